package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ReceiptImage holds the stored variants of an uploaded receipt
type ReceiptImage struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// Transaction represents a single expense or income record
type Transaction struct {
	ID            int32           `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Type          TransactionType `json:"type"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	CategoryID    int32           `json:"categoryId"`
	SubcategoryID *int32          `json:"subcategoryId,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	Receipt       *ReceiptImage   `json:"receipt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     *time.Time      `json:"deletedAt,omitempty"`
}

// TransactionFilters narrows transaction listings
type TransactionFilters struct {
	Type       *TransactionType
	CategoryID *int32
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginatedTransactions is a single page of transactions
type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// TransactionRepository defines the interface for transaction persistence operations
type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(userID uuid.UUID, id int32) (*Transaction, error)
	GetByUser(userID uuid.UUID, filters *TransactionFilters) (*PaginatedTransactions, error)
	// ListByUser returns every live transaction the user owns, with no
	// date filtering. Budget performance filters by interval itself.
	ListByUser(userID uuid.UUID) ([]*Transaction, error)
	ListByUserAndDateRange(userID uuid.UUID, start, end time.Time) ([]*Transaction, error)
	Update(transaction *Transaction) (*Transaction, error)
	SoftDelete(userID uuid.UUID, id int32) error
	SetReceipt(userID uuid.UUID, id int32, receipt *ReceiptImage) (*Transaction, error)
	ClearReceipt(userID uuid.UUID, id int32) (*Transaction, error)
}
