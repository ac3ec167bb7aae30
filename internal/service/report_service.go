package service

import (
	"sort"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportService handles aggregated reporting over a user's transactions
type ReportService struct {
	transactionRepo domain.TransactionRepository
}

// NewReportService creates a new ReportService
func NewReportService(transactionRepo domain.TransactionRepository) *ReportService {
	return &ReportService{transactionRepo: transactionRepo}
}

// MonthTotals holds the income/expense totals for one calendar month
type MonthTotals struct {
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// MonthlySummary holds the per-month totals for a calendar year
type MonthlySummary struct {
	Year   int            `json:"year"`
	Months []*MonthTotals `json:"months"`
}

// GetMonthlySummary returns per-month income/expense totals for a year.
// All twelve months are present, zero-filled where no transactions exist.
func (s *ReportService) GetMonthlySummary(userID uuid.UUID, year int) (*MonthlySummary, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	transactions, err := s.transactionRepo.ListByUserAndDateRange(userID, start, end)
	if err != nil {
		return nil, err
	}

	months := make([]*MonthTotals, 12)
	for i := range months {
		months[i] = &MonthTotals{
			Month:    i + 1,
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
			Net:      decimal.Zero,
		}
	}

	for _, t := range transactions {
		m := months[int(t.Date.Month())-1]
		switch t.Type {
		case domain.TransactionTypeIncome:
			m.Income = m.Income.Add(t.Amount)
		case domain.TransactionTypeExpense:
			m.Expenses = m.Expenses.Add(t.Amount)
		}
	}

	for _, m := range months {
		m.Net = m.Income.Sub(m.Expenses)
	}

	return &MonthlySummary{Year: year, Months: months}, nil
}

// CategoryTotal holds the aggregated amount for one top-level category
type CategoryTotal struct {
	CategoryID int32           `json:"categoryId"`
	Total      decimal.Decimal `json:"total"`
}

// GetCategoryBreakdown returns per-category totals for transactions of the
// given type dated within [start, end]. Subcategory spend rolls up into the
// parent category, which is what transactions store as CategoryID.
func (s *ReportService) GetCategoryBreakdown(userID uuid.UUID, start, end time.Time, transactionType domain.TransactionType) ([]*CategoryTotal, error) {
	transactions, err := s.transactionRepo.ListByUserAndDateRange(userID, start, end)
	if err != nil {
		return nil, err
	}

	totals := make(map[int32]decimal.Decimal)
	for _, t := range transactions {
		if t.Type != transactionType {
			continue
		}
		totals[t.CategoryID] = totals[t.CategoryID].Add(t.Amount)
	}

	result := make([]*CategoryTotal, 0, len(totals))
	for categoryID, total := range totals {
		result = append(result, &CategoryTotal{CategoryID: categoryID, Total: total})
	}

	// Largest totals first; ties broken by category id for stable output
	sort.Slice(result, func(i, j int) bool {
		cmp := result[i].Total.Cmp(result[j].Total)
		if cmp != 0 {
			return cmp > 0
		}
		return result[i].CategoryID < result[j].CategoryID
	})

	return result, nil
}
