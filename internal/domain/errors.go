package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInternalError       = errors.New("internal error")
	ErrUserNotFound        = errors.New("user not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")

	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
	ErrNotesTooLong           = errors.New("notes exceed maximum length")
	ErrInvalidAmount          = errors.New("amount must be zero or positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidPeriod          = errors.New("invalid budget period")
	ErrInvalidDateRange       = errors.New("start date must not be after end date")
	ErrEndDateRequired        = errors.New("end date is required for custom periods")
	ErrInvalidParentCategory  = errors.New("parent category is invalid")
	ErrSubcategoryMismatch    = errors.New("subcategory does not belong to category")
	ErrUnknownCategoryName    = errors.New("unknown category name")
	ErrCategoryRefRequired    = errors.New("a category id or name is required")
	ErrInvalidCurrency        = errors.New("invalid currency code")
)

// Validation constants
const (
	MaxCategoryNameLength     = 100
	MaxTransactionNameLength  = 255
	MaxTransactionNotesLength = 1000
	MaxBudgetNameLength       = 255
)
