package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/google/uuid"
)

// ExportService writes a user's transactions as CSV
type ExportService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
}

// NewExportService creates a new ExportService
func NewExportService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository) *ExportService {
	return &ExportService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
	}
}

var csvHeader = []string{"Date", "Type", "Name", "Category", "Subcategory", "Amount", "Notes"}

// WriteTransactionsCSV streams the user's transactions to w as CSV.
// With start/end set, only transactions in that inclusive range export.
func (s *ExportService) WriteTransactionsCSV(w io.Writer, userID uuid.UUID, start, end *time.Time) error {
	var (
		transactions []*domain.Transaction
		err          error
	)
	if start != nil && end != nil {
		transactions, err = s.transactionRepo.ListByUserAndDateRange(userID, *start, *end)
	} else {
		transactions, err = s.transactionRepo.ListByUser(userID)
	}
	if err != nil {
		return err
	}

	categories, err := s.categoryRepo.GetAllByUser(userID)
	if err != nil {
		return err
	}
	names := make(map[int32]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range transactions {
		subcategory := ""
		if t.SubcategoryID != nil {
			subcategory = categoryName(names, *t.SubcategoryID)
		}
		notes := ""
		if t.Notes != nil {
			notes = *t.Notes
		}
		record := []string{
			t.Date.Format(time.DateOnly),
			string(t.Type),
			t.Name,
			categoryName(names, t.CategoryID),
			subcategory,
			t.Amount.StringFixed(2),
			notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// categoryName falls back to the raw id when the category was deleted
// after the transaction was recorded
func categoryName(names map[int32]string, id int32) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}
