package service

import (
	"errors"
	"testing"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestCreateCategory(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	userID := uuid.New()

	category, err := service.CreateCategory(userID, "  Groceries  ", nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if category.Name != "Groceries" {
		t.Errorf("expected trimmed name 'Groceries', got '%s'", category.Name)
	}
	if category.ID == 0 {
		t.Errorf("expected an assigned id")
	}
}

func TestCreateCategory_EmptyName(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)

	_, err := service.CreateCategory(uuid.New(), "   ", nil)
	if !errors.Is(err, domain.ErrNameRequired) {
		t.Errorf("expected ErrNameRequired, got: %v", err)
	}
}

func TestCreateCategory_SubcategoryUnderSubcategory(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	userID := uuid.New()

	parent := repo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})
	sub := repo.AddCategory(&domain.Category{UserID: userID, Name: "Produce", ParentID: &parent.ID})

	// Only two levels of nesting are allowed
	_, err := service.CreateCategory(userID, "Organic", &sub.ID)
	if !errors.Is(err, domain.ErrInvalidParentCategory) {
		t.Errorf("expected ErrInvalidParentCategory, got: %v", err)
	}
}

func TestUpdateCategory_SelfParent(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	userID := uuid.New()

	category := repo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})

	_, err := service.UpdateCategory(userID, category.ID, "Groceries", &category.ID)
	if !errors.Is(err, domain.ErrInvalidParentCategory) {
		t.Errorf("expected ErrInvalidParentCategory, got: %v", err)
	}
}

func TestUpdateCategory_DemoteParentWithChildren(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	userID := uuid.New()

	parent := repo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})
	repo.AddCategory(&domain.Category{UserID: userID, Name: "Produce", ParentID: &parent.ID})
	other := repo.AddCategory(&domain.Category{UserID: userID, Name: "Household"})

	// Groceries has children, it cannot become a subcategory itself
	_, err := service.UpdateCategory(userID, parent.ID, "Groceries", &other.ID)
	if !errors.Is(err, domain.ErrInvalidParentCategory) {
		t.Errorf("expected ErrInvalidParentCategory, got: %v", err)
	}
}

func TestDeleteCategory_CascadesToChildren(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	userID := uuid.New()

	parent := repo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})
	sub := repo.AddCategory(&domain.Category{UserID: userID, Name: "Produce", ParentID: &parent.ID})

	if err := service.DeleteCategory(userID, parent.ID); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, err := service.GetCategoryByID(userID, sub.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("expected subcategory deleted with parent, got: %v", err)
	}
}

func TestCanDelete(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	userID := uuid.New()

	category := repo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})
	repo.TransactionCounts[category.ID] = 3

	result, err := service.CanDelete(userID, category.ID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !result.HasTransactions {
		t.Errorf("expected HasTransactions true")
	}
	if result.TransactionCount != 3 {
		t.Errorf("expected count 3, got %d", result.TransactionCount)
	}
}

func TestResolveCategoryRef_ByID(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	userID := uuid.New()

	category := repo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})

	resolved, err := ResolveCategoryRef(repo, userID, domain.CategoryRef{ID: &category.ID})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resolved.ID != category.ID {
		t.Errorf("expected category %d, got %d", category.ID, resolved.ID)
	}
}

func TestResolveCategoryRef_ByLegacyName(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	userID := uuid.New()

	category := repo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})

	resolved, err := ResolveCategoryRef(repo, userID, domain.CategoryRef{Name: "Groceries"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resolved.ID != category.ID {
		t.Errorf("expected category %d, got %d", category.ID, resolved.ID)
	}
}

func TestResolveCategoryRef_UnknownName(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()

	_, err := ResolveCategoryRef(repo, uuid.New(), domain.CategoryRef{Name: "Nope"})
	if !errors.Is(err, domain.ErrUnknownCategoryName) {
		t.Errorf("expected ErrUnknownCategoryName, got: %v", err)
	}
}

func TestResolveCategoryRef_Empty(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()

	_, err := ResolveCategoryRef(repo, uuid.New(), domain.CategoryRef{})
	if !errors.Is(err, domain.ErrCategoryRefRequired) {
		t.Errorf("expected ErrCategoryRefRequired, got: %v", err)
	}
}

func TestResolveCategoryRef_IDWinsOverName(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	userID := uuid.New()

	byID := repo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})
	repo.AddCategory(&domain.Category{UserID: userID, Name: "Transport"})

	resolved, err := ResolveCategoryRef(repo, userID, domain.CategoryRef{ID: &byID.ID, Name: "Transport"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resolved.ID != byID.ID {
		t.Errorf("expected id reference to win, got category %d", resolved.ID)
	}
}
