package service

import (
	"strings"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/util"
	"github.com/achacynthia/expensetrack-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService handles expense/income business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	eventPublisher  websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransactionService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// TransactionInput holds the input for creating or updating a transaction
type TransactionInput struct {
	Type          domain.TransactionType
	Name          string
	Amount        decimal.Decimal
	Date          *time.Time
	Category      domain.CategoryRef
	SubcategoryID *int32
	Notes         *string
}

// CreateTransaction creates a new transaction with validation
func (s *TransactionService) CreateTransaction(userID uuid.UUID, input TransactionInput) (*domain.Transaction, error) {
	transaction, err := s.buildTransaction(userID, input)
	if err != nil {
		return nil, err
	}

	created, err := s.transactionRepo.Create(transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionCreated(created))
	return created, nil
}

// UpdateTransaction replaces a transaction's mutable fields
func (s *TransactionService) UpdateTransaction(userID uuid.UUID, id int32, input TransactionInput) (*domain.Transaction, error) {
	// Verify the transaction exists and is owned by the user
	existing, err := s.transactionRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	transaction, err := s.buildTransaction(userID, input)
	if err != nil {
		return nil, err
	}
	transaction.ID = existing.ID
	transaction.Receipt = existing.Receipt

	updated, err := s.transactionRepo.Update(transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// buildTransaction validates input and assembles a transaction record
func (s *TransactionService) buildTransaction(userID uuid.UUID, input TransactionInput) (*domain.Transaction, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxTransactionNameLength {
		return nil, domain.ErrNameTooLong
	}

	// Amount must be strictly positive at entry
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}

	// Resolve the category reference once, here at the boundary
	category, err := ResolveCategoryRef(s.categoryRepo, userID, input.Category)
	if err != nil {
		return nil, err
	}

	categoryID := category.ID
	subcategoryID := input.SubcategoryID

	// A legacy name may resolve to a subcategory; normalize it to the
	// (parent, subcategory) pair
	if category.ParentID != nil {
		categoryID = *category.ParentID
		subcategoryID = &category.ID
	}

	if subcategoryID != nil && (category.ParentID == nil || *subcategoryID != category.ID) {
		sub, err := s.categoryRepo.GetByID(userID, *subcategoryID)
		if err != nil {
			return nil, err
		}
		if sub.ParentID == nil || *sub.ParentID != categoryID {
			return nil, domain.ErrSubcategoryMismatch
		}
	}

	// Default the date to today, stored at day precision
	date := util.TruncateToDay(time.Now().UTC())
	if input.Date != nil {
		date = util.TruncateToDay(*input.Date)
	}

	// Trim and validate notes if provided
	var notes *string
	if input.Notes != nil {
		trimmed := strings.TrimSpace(*input.Notes)
		if trimmed != "" {
			if len(trimmed) > domain.MaxTransactionNotesLength {
				return nil, domain.ErrNotesTooLong
			}
			notes = &trimmed
		}
	}

	return &domain.Transaction{
		UserID:        userID,
		Type:          input.Type,
		Name:          name,
		Amount:        input.Amount,
		Date:          date,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Notes:         notes,
	}, nil
}

// GetTransaction retrieves a single transaction
func (s *TransactionService) GetTransaction(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(userID, id)
}

// GetTransactions retrieves a filtered, paginated page of transactions
func (s *TransactionService) GetTransactions(userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	return s.transactionRepo.GetByUser(userID, filters)
}

// AttachReceipt stores receipt metadata on a transaction
func (s *TransactionService) AttachReceipt(userID uuid.UUID, id int32, receipt *domain.ReceiptImage) (*domain.Transaction, error) {
	updated, err := s.transactionRepo.SetReceipt(userID, id, receipt)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// DetachReceipt removes receipt metadata from a transaction
func (s *TransactionService) DetachReceipt(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	updated, err := s.transactionRepo.ClearReceipt(userID, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// DeleteTransaction soft-deletes a transaction
func (s *TransactionService) DeleteTransaction(userID uuid.UUID, id int32) error {
	existing, err := s.transactionRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.SoftDelete(userID, id); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.TransactionDeleted(map[string]interface{}{"id": existing.ID}))
	return nil
}
