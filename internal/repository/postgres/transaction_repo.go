package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, user_id, type, name, amount, transaction_date,
	category_id, subcategory_id, notes,
	receipt_id, receipt_thumbnail_url, receipt_display_url, receipt_original_url,
	created_at, updated_at, deleted_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t          domain.Transaction
		amount     pgtype.Numeric
		receiptID  *string
		thumbURL   *string
		displayURL *string
		origURL    *string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Name, &amount, &t.Date,
		&t.CategoryID, &t.SubcategoryID, &t.Notes,
		&receiptID, &thumbURL, &displayURL, &origURL,
		&t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	t.Amount = pgNumericToDecimal(amount)
	if receiptID != nil {
		t.Receipt = &domain.ReceiptImage{
			ID:           *receiptID,
			ThumbnailURL: deref(thumbURL),
			DisplayURL:   deref(displayURL),
			OriginalURL:  deref(origURL),
		}
	}
	return &t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Create creates a new transaction
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, type, name, amount, transaction_date, category_id, subcategory_id, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+transactionColumns,
		uuidToPg(transaction.UserID), transaction.Type, transaction.Name, amount,
		transaction.Date, transaction.CategoryID, transaction.SubcategoryID, transaction.Notes)
	return scanTransaction(row)
}

// GetByID retrieves a live transaction by ID within a user's data
func (r *TransactionRepository) GetByID(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		uuidToPg(userID), id)
	return scanTransaction(row)
}

// GetByUser retrieves a filtered, paginated page of the user's transactions
func (r *TransactionRepository) GetByUser(userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	where := `WHERE user_id = $1 AND deleted_at IS NULL`
	args := []interface{}{uuidToPg(userID)}

	if filters.Type != nil {
		args = append(args, *filters.Type)
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += fmt.Sprintf(` AND (category_id = $%d OR subcategory_id = $%d)`, len(args), len(args))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		where += fmt.Sprintf(` AND transaction_date >= $%d`, len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		where += fmt.Sprintf(` AND transaction_date <= $%d`, len(args))
	}

	var totalItems int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions `+where, args...).Scan(&totalItems); err != nil {
		return nil, err
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`SELECT `+transactionColumns+`
		 FROM transactions %s
		 ORDER BY transaction_date DESC, id DESC
		 LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32((totalItems + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// ListByUser retrieves every live transaction owned by the user
func (r *TransactionRepository) ListByUser(userID uuid.UUID) ([]*domain.Transaction, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE user_id = $1 AND deleted_at IS NULL
		 ORDER BY transaction_date, id`,
		uuidToPg(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListByUserAndDateRange retrieves live transactions dated within [start, end]
func (r *TransactionRepository) ListByUserAndDateRange(userID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE user_id = $1 AND deleted_at IS NULL
		   AND transaction_date >= $2 AND transaction_date <= $3
		 ORDER BY transaction_date, id`,
		uuidToPg(userID), start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

// Update updates an existing transaction
func (r *TransactionRepository) Update(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE transactions
		 SET type = $3, name = $4, amount = $5, transaction_date = $6,
		     category_id = $7, subcategory_id = $8, notes = $9, updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
		 RETURNING `+transactionColumns,
		uuidToPg(transaction.UserID), transaction.ID, transaction.Type, transaction.Name,
		amount, transaction.Date, transaction.CategoryID, transaction.SubcategoryID, transaction.Notes)
	return scanTransaction(row)
}

// SoftDelete marks a transaction as deleted
func (r *TransactionRepository) SoftDelete(userID uuid.UUID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions
		 SET deleted_at = now(), updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		uuidToPg(userID), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SetReceipt attaches receipt image metadata to a transaction
func (r *TransactionRepository) SetReceipt(userID uuid.UUID, id int32, receipt *domain.ReceiptImage) (*domain.Transaction, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`UPDATE transactions
		 SET receipt_id = $3, receipt_thumbnail_url = $4, receipt_display_url = $5,
		     receipt_original_url = $6, updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
		 RETURNING `+transactionColumns,
		uuidToPg(userID), id, receipt.ID, receipt.ThumbnailURL, receipt.DisplayURL, receipt.OriginalURL)
	return scanTransaction(row)
}

// ClearReceipt removes receipt image metadata from a transaction
func (r *TransactionRepository) ClearReceipt(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`UPDATE transactions
		 SET receipt_id = NULL, receipt_thumbnail_url = NULL, receipt_display_url = NULL,
		     receipt_original_url = NULL, updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
		 RETURNING `+transactionColumns,
		uuidToPg(userID), id)
	return scanTransaction(row)
}
