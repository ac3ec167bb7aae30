package postgres

import (
	"context"
	"errors"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = `id, user_id, name, period, start_date, end_date, total_amount, created_at, updated_at`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		b      domain.Budget
		amount pgtype.Numeric
	)
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Period, &b.StartDate, &b.EndDate,
		&amount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	b.TotalAmount = pgNumericToDecimal(amount)
	return &b, nil
}

// Create creates a new budget
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(budget.TotalAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO budgets (user_id, name, period, start_date, end_date, total_amount)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+budgetColumns,
		uuidToPg(budget.UserID), budget.Name, budget.Period, budget.StartDate, budget.EndDate, amount)
	return scanBudget(row)
}

// GetByID retrieves a budget by ID within a user's data
func (r *BudgetRepository) GetByID(userID uuid.UUID, id int32) (*domain.Budget, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND id = $2`,
		uuidToPg(userID), id)
	return scanBudget(row)
}

// GetAllByUser retrieves all budgets for a user, newest interval first
func (r *BudgetRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Budget, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+budgetColumns+`
		 FROM budgets
		 WHERE user_id = $1
		 ORDER BY start_date DESC, id DESC`,
		uuidToPg(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// Update updates an existing budget
func (r *BudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(budget.TotalAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE budgets
		 SET name = $3, period = $4, start_date = $5, end_date = $6, total_amount = $7, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+budgetColumns,
		uuidToPg(budget.UserID), budget.ID, budget.Name, budget.Period,
		budget.StartDate, budget.EndDate, amount)
	return scanBudget(row)
}

// Delete removes a budget and its allocations
func (r *BudgetRepository) Delete(userID uuid.UUID, id int32) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM budget_allocations WHERE budget_id = $1`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM budgets WHERE user_id = $1 AND id = $2`, uuidToPg(userID), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}

	return tx.Commit(ctx)
}

const allocationColumns = `id, budget_id, category_id, subcategory_id, amount, created_at, updated_at`

func scanAllocation(row pgx.Row) (*domain.BudgetAllocation, error) {
	var (
		a      domain.BudgetAllocation
		amount pgtype.Numeric
	)
	err := row.Scan(&a.ID, &a.BudgetID, &a.CategoryID, &a.SubcategoryID,
		&amount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Amount = pgNumericToDecimal(amount)
	return &a, nil
}

// ListAllocations retrieves all allocations for a budget
func (r *BudgetRepository) ListAllocations(budgetID int32) ([]*domain.BudgetAllocation, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+allocationColumns+`
		 FROM budget_allocations
		 WHERE budget_id = $1
		 ORDER BY id`,
		budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []*domain.BudgetAllocation
	for rows.Next() {
		allocation, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, allocation)
	}
	return allocations, rows.Err()
}

// ReplaceAllocations swaps the budget's allocation set atomically
func (r *BudgetRepository) ReplaceAllocations(budgetID int32, allocations []*domain.BudgetAllocation) ([]*domain.BudgetAllocation, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM budget_allocations WHERE budget_id = $1`, budgetID); err != nil {
		return nil, err
	}

	result := make([]*domain.BudgetAllocation, 0, len(allocations))
	for _, allocation := range allocations {
		amount, err := decimalToPgNumeric(allocation.Amount)
		if err != nil {
			return nil, err
		}
		row := tx.QueryRow(ctx,
			`INSERT INTO budget_allocations (budget_id, category_id, subcategory_id, amount)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+allocationColumns,
			budgetID, allocation.CategoryID, allocation.SubcategoryID, amount)
		inserted, err := scanAllocation(row)
		if err != nil {
			return nil, err
		}
		result = append(result, inserted)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}
