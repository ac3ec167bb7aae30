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

// BudgetService handles budget and allocation business logic
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	categoryRepo    domain.CategoryRepository
	transactionRepo domain.TransactionRepository
	eventPublisher  websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo domain.BudgetRepository,
	categoryRepo domain.CategoryRepository,
	transactionRepo domain.TransactionRepository,
) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// BudgetInput holds the input for creating or updating a budget
type BudgetInput struct {
	Name        string
	Period      domain.BudgetPeriod
	StartDate   time.Time
	EndDate     *time.Time
	TotalAmount decimal.Decimal
}

// BudgetDetail pairs a budget with its allocations
type BudgetDetail struct {
	Budget      *domain.Budget             `json:"budget"`
	Allocations []*domain.BudgetAllocation `json:"allocations"`
}

// AllocationInput represents a single allocation to set
type AllocationInput struct {
	CategoryID    int32
	SubcategoryID *int32
	Amount        decimal.Decimal
}

// validateBudgetInput checks the input and returns the resolved end date
func (s *BudgetService) validateBudgetInput(input *BudgetInput) (time.Time, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return time.Time{}, domain.ErrNameRequired
	}
	if len(input.Name) > domain.MaxBudgetNameLength {
		return time.Time{}, domain.ErrNameTooLong
	}
	if !input.Period.IsValid() {
		return time.Time{}, domain.ErrInvalidPeriod
	}
	if input.TotalAmount.IsNegative() {
		return time.Time{}, domain.ErrInvalidAmount
	}

	start := util.TruncateToDay(input.StartDate)

	// Preset periods derive the end date from the start; custom budgets
	// carry an explicit one
	if end, ok := util.PeriodEnd(start, input.Period); ok {
		if input.EndDate == nil {
			return end, nil
		}
		end = util.TruncateToDay(*input.EndDate)
		if start.After(end) {
			return time.Time{}, domain.ErrInvalidDateRange
		}
		return end, nil
	}

	if input.EndDate == nil {
		return time.Time{}, domain.ErrEndDateRequired
	}
	end := util.TruncateToDay(*input.EndDate)
	if start.After(end) {
		return time.Time{}, domain.ErrInvalidDateRange
	}
	return end, nil
}

// CreateBudget creates a new budget
func (s *BudgetService) CreateBudget(userID uuid.UUID, input BudgetInput) (*domain.Budget, error) {
	end, err := s.validateBudgetInput(&input)
	if err != nil {
		return nil, err
	}

	budget := &domain.Budget{
		UserID:      userID,
		Name:        input.Name,
		Period:      input.Period,
		StartDate:   util.TruncateToDay(input.StartDate),
		EndDate:     end,
		TotalAmount: input.TotalAmount,
	}

	created, err := s.budgetRepo.Create(budget)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.BudgetCreated(created))
	return created, nil
}

// UpdateBudget replaces a budget's mutable fields
func (s *BudgetService) UpdateBudget(userID uuid.UUID, id int32, input BudgetInput) (*domain.Budget, error) {
	existing, err := s.budgetRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	end, err := s.validateBudgetInput(&input)
	if err != nil {
		return nil, err
	}

	existing.Name = input.Name
	existing.Period = input.Period
	existing.StartDate = util.TruncateToDay(input.StartDate)
	existing.EndDate = end
	existing.TotalAmount = input.TotalAmount

	updated, err := s.budgetRepo.Update(existing)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.BudgetUpdated(updated))
	return updated, nil
}

// GetBudgets retrieves all budgets for a user
func (s *BudgetService) GetBudgets(userID uuid.UUID) ([]*domain.Budget, error) {
	return s.budgetRepo.GetAllByUser(userID)
}

// GetBudget retrieves a budget with its allocations
func (s *BudgetService) GetBudget(userID uuid.UUID, id int32) (*BudgetDetail, error) {
	budget, err := s.budgetRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	allocations, err := s.budgetRepo.ListAllocations(budget.ID)
	if err != nil {
		return nil, err
	}

	return &BudgetDetail{Budget: budget, Allocations: allocations}, nil
}

// DeleteBudget removes a budget and its allocations
func (s *BudgetService) DeleteBudget(userID uuid.UUID, id int32) error {
	_, err := s.budgetRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.budgetRepo.Delete(userID, id); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.BudgetDeleted(map[string]interface{}{"id": id}))
	return nil
}

// SetAllocations replaces the budget's allocation set after validating
// every entry. Allocation amounts need not sum to the budget's total.
func (s *BudgetService) SetAllocations(userID uuid.UUID, budgetID int32, allocations []AllocationInput) (*BudgetDetail, error) {
	budget, err := s.budgetRepo.GetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	// First pass: validate all inputs before making any changes
	domainAllocations := make([]*domain.BudgetAllocation, len(allocations))
	for i, input := range allocations {
		if input.Amount.IsNegative() {
			return nil, domain.ErrInvalidAmount
		}

		category, err := s.categoryRepo.GetByID(userID, input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.ParentID != nil {
			// Allocations are keyed by top-level category
			return nil, domain.ErrInvalidParentCategory
		}

		if input.SubcategoryID != nil {
			sub, err := s.categoryRepo.GetByID(userID, *input.SubcategoryID)
			if err != nil {
				return nil, err
			}
			if sub.ParentID == nil || *sub.ParentID != input.CategoryID {
				return nil, domain.ErrSubcategoryMismatch
			}
		}

		domainAllocations[i] = &domain.BudgetAllocation{
			BudgetID:      budget.ID,
			CategoryID:    input.CategoryID,
			SubcategoryID: input.SubcategoryID,
			Amount:        input.Amount,
		}
	}

	// Second pass: replace the allocation set atomically
	replaced, err := s.budgetRepo.ReplaceAllocations(budget.ID, domainAllocations)
	if err != nil {
		return nil, err
	}

	detail := &BudgetDetail{Budget: budget, Allocations: replaced}
	s.publishEvent(userID, websocket.BudgetUpdated(detail))
	return detail, nil
}

// GetPerformance computes the allocated/spent/remaining summary for a
// budget. The repository lookup scopes by user, so a budget owned by
// someone else surfaces as not found.
func (s *BudgetService) GetPerformance(userID uuid.UUID, budgetID int32) (*domain.BudgetPerformance, error) {
	budget, err := s.budgetRepo.GetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	allocations, err := s.budgetRepo.ListAllocations(budget.ID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	return ComputePerformance(budget, allocations, transactions), nil
}
