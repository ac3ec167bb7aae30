package service

import (
	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/util"
	"github.com/shopspring/decimal"
)

// ComputePerformance produces the allocated/spent/remaining summary for a
// budget from its allocations and the owning user's transactions. It is a
// pure function: callers are responsible for the ownership check, and the
// transaction list may contain records outside the budget's interval.
//
// Only expenses dated within [StartDate, EndDate] (inclusive on both ends)
// count. Spend in categories without an allocation is excluded from both
// the per-category breakdown and the top-level Spent figure.
func ComputePerformance(budget *domain.Budget, allocations []*domain.BudgetAllocation, transactions []*domain.Transaction) *domain.BudgetPerformance {
	// Sum in-interval expense amounts per category
	spentByCategory := make(map[int32]decimal.Decimal)
	for _, t := range transactions {
		if t.Type != domain.TransactionTypeExpense {
			continue
		}
		if !util.InInterval(t.Date, budget.StartDate, budget.EndDate) {
			continue
		}
		spentByCategory[t.CategoryID] = spentByCategory[t.CategoryID].Add(t.Amount)
	}

	// Group allocations by category in first-seen order
	allocated := decimal.Zero
	allocatedByCategory := make(map[int32]decimal.Decimal)
	var order []int32
	for _, a := range allocations {
		if _, seen := allocatedByCategory[a.CategoryID]; !seen {
			order = append(order, a.CategoryID)
		}
		allocatedByCategory[a.CategoryID] = allocatedByCategory[a.CategoryID].Add(a.Amount)
		allocated = allocated.Add(a.Amount)
	}

	spent := decimal.Zero
	categories := make([]*domain.CategoryPerformance, 0, len(order))
	for _, categoryID := range order {
		catAllocated := allocatedByCategory[categoryID]
		catSpent := spentByCategory[categoryID] // zero-value decimal is 0
		categories = append(categories, &domain.CategoryPerformance{
			CategoryID: categoryID,
			Allocated:  catAllocated,
			Spent:      catSpent,
			Remaining:  catAllocated.Sub(catSpent),
		})
		spent = spent.Add(catSpent)
	}

	return &domain.BudgetPerformance{
		Allocated:  allocated,
		Spent:      spent,
		Remaining:  allocated.Sub(spent),
		Categories: categories,
	}
}
