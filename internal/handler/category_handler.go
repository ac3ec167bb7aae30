package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/middleware"
	"github.com/achacynthia/expensetrack-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest represents the create/update category request body
type CategoryRequest struct {
	Name     string `json:"name"`
	ParentID *int32 `json:"parentId,omitempty"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID       int32  `json:"id"`
	Name     string `json:"name"`
	ParentID *int32 `json:"parentId,omitempty"`
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:       category.ID,
		Name:     category.Name,
		ParentID: category.ParentID,
	}
}

// CreateCategory handles POST /categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCategory(userID, req.Name, req.ParentID)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 100 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrInvalidParentCategory) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "parentId", Message: "Parent must be an existing top-level category"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create category")
		return NewInternalError(c, "Failed to create category")
	}

	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// GetCategories handles GET /categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	categories, err := h.categoryService.GetCategories(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get categories")
		return NewInternalError(c, "Failed to get categories")
	}

	response := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = toCategoryResponse(category)
	}

	return c.JSON(http.StatusOK, response)
}

// UpdateCategory handles PUT /categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.UpdateCategory(userID, id, req.Name, req.ParentID)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 100 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrInvalidParentCategory) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "parentId", Message: "Parent must be an existing top-level category"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("category_id", id).Msg("Failed to update category")
		return NewInternalError(c, "Failed to update category")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	if err := h.categoryService.DeleteCategory(userID, id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("category_id", id).Msg("Failed to delete category")
		return NewInternalError(c, "Failed to delete category")
	}

	return c.NoContent(http.StatusNoContent)
}

// CanDeleteCategory handles GET /categories/:id/can-delete
func (h *CategoryHandler) CanDeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	result, err := h.categoryService.CanDelete(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("category_id", id).Msg("Failed to check category")
		return NewInternalError(c, "Failed to check category")
	}

	return c.JSON(http.StatusOK, result)
}

// parseIDParam parses the :id path parameter as an int32
func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return int32(id), nil
}
