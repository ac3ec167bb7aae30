package service

import (
	"errors"
	"strings"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/websocket"
	"github.com/google/uuid"
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CategoryService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// CreateCategory creates a new category or subcategory
func (s *CategoryService) CreateCategory(userID uuid.UUID, name string, parentID *int32) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	// A subcategory's parent must exist and must itself be top-level
	if parentID != nil {
		parent, err := s.categoryRepo.GetByID(userID, *parentID)
		if err != nil {
			return nil, domain.ErrInvalidParentCategory
		}
		if parent.ParentID != nil {
			return nil, domain.ErrInvalidParentCategory
		}
	}

	category := &domain.Category{
		UserID:   userID,
		Name:     name,
		ParentID: parentID,
	}

	created, err := s.categoryRepo.Create(category)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.CategoryCreated(created))
	return created, nil
}

// GetCategories retrieves all categories for a user
func (s *CategoryService) GetCategories(userID uuid.UUID) ([]*domain.Category, error) {
	return s.categoryRepo.GetAllByUser(userID)
}

// GetCategoryByID retrieves a category by ID
func (s *CategoryService) GetCategoryByID(userID uuid.UUID, id int32) (*domain.Category, error) {
	return s.categoryRepo.GetByID(userID, id)
}

// UpdateCategory updates a category's name and parent
func (s *CategoryService) UpdateCategory(userID uuid.UUID, id int32, name string, parentID *int32) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	if parentID != nil {
		if *parentID == id {
			return nil, domain.ErrInvalidParentCategory
		}
		parent, err := s.categoryRepo.GetByID(userID, *parentID)
		if err != nil {
			return nil, domain.ErrInvalidParentCategory
		}
		if parent.ParentID != nil {
			return nil, domain.ErrInvalidParentCategory
		}

		// A category with subcategories cannot be demoted to a subcategory
		all, err := s.categoryRepo.GetAllByUser(userID)
		if err != nil {
			return nil, err
		}
		for _, c := range all {
			if c.ParentID != nil && *c.ParentID == id {
				return nil, domain.ErrInvalidParentCategory
			}
		}
	}

	updated, err := s.categoryRepo.Update(userID, id, name, parentID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.CategoryUpdated(updated))
	return updated, nil
}

// DeleteCategory soft-deletes a category and its subcategories
func (s *CategoryService) DeleteCategory(userID uuid.UUID, id int32) error {
	// Verify category exists before deleting
	_, err := s.categoryRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.categoryRepo.SoftDelete(userID, id); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.CategoryDeleted(map[string]interface{}{"id": id}))
	return nil
}

// CanDeleteResponse contains information about whether a category can be safely deleted
type CanDeleteResponse struct {
	HasTransactions  bool  `json:"hasTransactions"`
	TransactionCount int64 `json:"transactionCount"`
}

// CanDelete checks if a category can be safely deleted (no transactions assigned)
func (s *CategoryService) CanDelete(userID uuid.UUID, id int32) (*CanDeleteResponse, error) {
	// Verify category exists
	_, err := s.categoryRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	hasTransactions, count, err := s.categoryRepo.HasTransactions(userID, id)
	if err != nil {
		return nil, err
	}

	return &CanDeleteResponse{
		HasTransactions:  hasTransactions,
		TransactionCount: count,
	}, nil
}

// ResolveCategoryRef resolves a category reference (id or legacy name)
// into a canonical category. Resolution happens once, at the service
// boundary; business logic below it only sees category ids.
func ResolveCategoryRef(repo domain.CategoryRepository, userID uuid.UUID, ref domain.CategoryRef) (*domain.Category, error) {
	if ref.IsZero() {
		return nil, domain.ErrCategoryRefRequired
	}

	if ref.ID != nil {
		return repo.GetByID(userID, *ref.ID)
	}

	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return nil, domain.ErrCategoryRefRequired
	}
	category, err := repo.GetByName(userID, name)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, domain.ErrUnknownCategoryName
		}
		return nil, err
	}
	return category, nil
}
