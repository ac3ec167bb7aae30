package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetPeriod string

const (
	BudgetPeriodWeekly    BudgetPeriod = "weekly"
	BudgetPeriodMonthly   BudgetPeriod = "monthly"
	BudgetPeriodQuarterly BudgetPeriod = "quarterly"
	BudgetPeriodBiannual  BudgetPeriod = "biannual"
	BudgetPeriodAnnual    BudgetPeriod = "annual"
	BudgetPeriodCustom    BudgetPeriod = "custom"
)

// IsValid reports whether p is a known budget period
func (p BudgetPeriod) IsValid() bool {
	switch p {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodQuarterly,
		BudgetPeriodBiannual, BudgetPeriodAnnual, BudgetPeriodCustom:
		return true
	}
	return false
}

// Budget defines a closed date interval [StartDate, EndDate] with a
// planned total spend. Allocations split the plan across categories and
// need not sum to TotalAmount.
type Budget struct {
	ID          int32           `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Name        string          `json:"name"`
	Period      BudgetPeriod    `json:"period"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// BudgetAllocation is the planned spend for one category within a budget's interval
type BudgetAllocation struct {
	ID            int32           `json:"id"`
	BudgetID      int32           `json:"budgetId"`
	CategoryID    int32           `json:"categoryId"`
	SubcategoryID *int32          `json:"subcategoryId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CategoryPerformance is the allocated/spent/remaining summary for one
// allocated category
type CategoryPerformance struct {
	CategoryID int32           `json:"categoryId"`
	Allocated  decimal.Decimal `json:"allocated"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// BudgetPerformance is computed on every request and never persisted.
// Remaining may be negative; over-budget is a valid state, not an error.
type BudgetPerformance struct {
	Allocated  decimal.Decimal        `json:"allocated"`
	Spent      decimal.Decimal        `json:"spent"`
	Remaining  decimal.Decimal        `json:"remaining"`
	Categories []*CategoryPerformance `json:"categories"`
}

// BudgetRepository defines the interface for budget persistence operations
type BudgetRepository interface {
	Create(budget *Budget) (*Budget, error)
	GetByID(userID uuid.UUID, id int32) (*Budget, error)
	GetAllByUser(userID uuid.UUID) ([]*Budget, error)
	Update(budget *Budget) (*Budget, error)
	Delete(userID uuid.UUID, id int32) error
	ListAllocations(budgetID int32) ([]*BudgetAllocation, error)
	// ReplaceAllocations swaps the budget's allocation set atomically
	ReplaceAllocations(budgetID int32, allocations []*BudgetAllocation) ([]*BudgetAllocation, error)
}
