package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/middleware"
	"github.com/achacynthia/expensetrack-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetRequest represents the create/update budget request body
type BudgetRequest struct {
	Name        string  `json:"name"`
	Period      string  `json:"period"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate,omitempty"`
	TotalAmount string  `json:"totalAmount"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	Period      string `json:"period"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	TotalAmount string `json:"totalAmount"`
}

// AllocationRequest represents a single allocation in a set request
type AllocationRequest struct {
	CategoryID    int32  `json:"categoryId"`
	SubcategoryID *int32 `json:"subcategoryId,omitempty"`
	Amount        string `json:"amount"`
}

// SetAllocationsRequest represents the replace-allocations request body
type SetAllocationsRequest struct {
	Allocations []AllocationRequest `json:"allocations"`
}

// AllocationResponse represents an allocation in API responses
type AllocationResponse struct {
	ID            int32  `json:"id"`
	CategoryID    int32  `json:"categoryId"`
	SubcategoryID *int32 `json:"subcategoryId,omitempty"`
	Amount        string `json:"amount"`
}

// BudgetDetailResponse pairs a budget with its allocations
type BudgetDetailResponse struct {
	Budget      BudgetResponse       `json:"budget"`
	Allocations []AllocationResponse `json:"allocations"`
}

// CategoryPerformanceResponse represents one category's budget performance
type CategoryPerformanceResponse struct {
	CategoryID int32  `json:"categoryId"`
	Allocated  string `json:"allocated"`
	Spent      string `json:"spent"`
	Remaining  string `json:"remaining"`
}

// PerformanceResponse represents the budget performance summary
type PerformanceResponse struct {
	Allocated  string                        `json:"allocated"`
	Spent      string                        `json:"spent"`
	Remaining  string                        `json:"remaining"`
	Categories []CategoryPerformanceResponse `json:"categories"`
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:          b.ID,
		Name:        b.Name,
		Period:      string(b.Period),
		StartDate:   b.StartDate.Format(time.DateOnly),
		EndDate:     b.EndDate.Format(time.DateOnly),
		TotalAmount: b.TotalAmount.StringFixed(2),
	}
}

func toAllocationResponses(allocations []*domain.BudgetAllocation) []AllocationResponse {
	result := make([]AllocationResponse, len(allocations))
	for i, a := range allocations {
		result[i] = AllocationResponse{
			ID:            a.ID,
			CategoryID:    a.CategoryID,
			SubcategoryID: a.SubcategoryID,
			Amount:        a.Amount.StringFixed(2),
		}
	}
	return result
}

// parseBudgetInput converts a request body into a service input
func parseBudgetInput(c echo.Context, req BudgetRequest) (service.BudgetInput, error) {
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return service.BudgetInput{}, NewValidationError(c, "Invalid startDate", []ValidationError{
			{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	var end *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := time.Parse(time.DateOnly, *req.EndDate)
		if err != nil {
			return service.BudgetInput{}, NewValidationError(c, "Invalid endDate", []ValidationError{
				{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		end = &parsed
	}

	amount, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return service.BudgetInput{}, NewValidationError(c, "Invalid totalAmount", []ValidationError{
			{Field: "totalAmount", Message: "Must be a valid decimal number"},
		})
	}

	return service.BudgetInput{
		Name:        req.Name,
		Period:      domain.BudgetPeriod(req.Period),
		StartDate:   start,
		EndDate:     end,
		TotalAmount: amount,
	}, nil
}

// budgetErrorResponse maps domain validation errors to problem responses
func budgetErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidPeriod):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "period", Message: "Period must be one of: weekly, monthly, quarterly, biannual, annual, custom"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "totalAmount", Message: "Amount must not be negative"},
		})
	case errors.Is(err, domain.ErrEndDateRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "endDate", Message: "End date is required for custom budgets"},
		})
	case errors.Is(err, domain.ErrInvalidDateRange):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "endDate", Message: "End date must not be before start date"},
		})
	}
	return nil
}

// CreateBudget handles POST /budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseBudgetInput(c, req)
	if err != nil {
		return err
	}

	budget, err := h.budgetService.CreateBudget(userID, input)
	if err != nil {
		if resp := budgetErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets handles GET /budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.GetBudgets(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get budgets")
		return NewInternalError(c, "Failed to get budgets")
	}

	response := make([]BudgetResponse, len(budgets))
	for i, b := range budgets {
		response[i] = toBudgetResponse(b)
	}

	return c.JSON(http.StatusOK, response)
}

// GetBudget handles GET /budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	detail, err := h.budgetService.GetBudget(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("budget_id", id).Msg("Failed to get budget")
		return NewInternalError(c, "Failed to get budget")
	}

	return c.JSON(http.StatusOK, BudgetDetailResponse{
		Budget:      toBudgetResponse(detail.Budget),
		Allocations: toAllocationResponses(detail.Allocations),
	})
}

// UpdateBudget handles PUT /budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseBudgetInput(c, req)
	if err != nil {
		return err
	}

	budget, err := h.budgetService.UpdateBudget(userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if resp := budgetErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("budget_id", id).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget handles DELETE /budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(userID, id); err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("budget_id", id).Msg("Failed to delete budget")
		return NewInternalError(c, "Failed to delete budget")
	}

	return c.NoContent(http.StatusNoContent)
}

// SetAllocations handles PUT /budgets/:id/allocations
func (h *BudgetHandler) SetAllocations(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req SetAllocationsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	allocations := make([]service.AllocationInput, len(req.Allocations))
	for i, a := range req.Allocations {
		amount, err := decimal.NewFromString(a.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid allocation amount", []ValidationError{
				{Field: "allocations", Message: "Amount must be a valid decimal number"},
			})
		}
		allocations[i] = service.AllocationInput{
			CategoryID:    a.CategoryID,
			SubcategoryID: a.SubcategoryID,
			Amount:        amount,
		}
	}

	detail, err := h.budgetService.SetAllocations(userID, id, allocations)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "allocations", Message: "Category not found"},
			})
		}
		if errors.Is(err, domain.ErrInvalidParentCategory) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "allocations", Message: "Allocations must target top-level categories"},
			})
		}
		if errors.Is(err, domain.ErrSubcategoryMismatch) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "allocations", Message: "Subcategory does not belong to the category"},
			})
		}
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "allocations", Message: "Amounts must not be negative"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("budget_id", id).Msg("Failed to set allocations")
		return NewInternalError(c, "Failed to set allocations")
	}

	return c.JSON(http.StatusOK, BudgetDetailResponse{
		Budget:      toBudgetResponse(detail.Budget),
		Allocations: toAllocationResponses(detail.Allocations),
	})
}

// GetPerformance handles GET /budgets/:id/performance
func (h *BudgetHandler) GetPerformance(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	performance, err := h.budgetService.GetPerformance(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("budget_id", id).Msg("Failed to compute performance")
		return NewInternalError(c, "Failed to compute performance")
	}

	categories := make([]CategoryPerformanceResponse, len(performance.Categories))
	for i, cp := range performance.Categories {
		categories[i] = CategoryPerformanceResponse{
			CategoryID: cp.CategoryID,
			Allocated:  cp.Allocated.StringFixed(2),
			Spent:      cp.Spent.StringFixed(2),
			Remaining:  cp.Remaining.StringFixed(2),
		}
	}

	return c.JSON(http.StatusOK, PerformanceResponse{
		Allocated:  performance.Allocated.StringFixed(2),
		Spent:      performance.Spent.StringFixed(2),
		Remaining:  performance.Remaining.StringFixed(2),
		Categories: categories,
	})
}
