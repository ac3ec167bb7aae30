package service

import (
	"errors"
	"testing"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newBudgetService() (*BudgetService, *testutil.MockBudgetRepository, *testutil.MockCategoryRepository, *testutil.MockTransactionRepository) {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	return NewBudgetService(budgetRepo, categoryRepo, transactionRepo), budgetRepo, categoryRepo, transactionRepo
}

func TestCreateBudget_MonthlyDerivesEndDate(t *testing.T) {
	service, _, _, _ := newBudgetService()
	userID := uuid.New()

	budget, err := service.CreateBudget(userID, BudgetInput{
		Name:        "January",
		Period:      domain.BudgetPeriodMonthly,
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	expectedEnd := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	if !budget.EndDate.Equal(expectedEnd) {
		t.Errorf("expected end date %s, got %s", expectedEnd, budget.EndDate)
	}
}

func TestCreateBudget_CustomRequiresEndDate(t *testing.T) {
	service, _, _, _ := newBudgetService()

	_, err := service.CreateBudget(uuid.New(), BudgetInput{
		Name:        "Trip",
		Period:      domain.BudgetPeriodCustom,
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.NewFromInt(1000),
	})
	if !errors.Is(err, domain.ErrEndDateRequired) {
		t.Errorf("expected ErrEndDateRequired, got: %v", err)
	}
}

func TestCreateBudget_EndBeforeStart(t *testing.T) {
	service, _, _, _ := newBudgetService()

	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := service.CreateBudget(uuid.New(), BudgetInput{
		Name:        "Trip",
		Period:      domain.BudgetPeriodCustom,
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     &end,
		TotalAmount: decimal.NewFromInt(1000),
	})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got: %v", err)
	}
}

func TestCreateBudget_InvalidPeriod(t *testing.T) {
	service, _, _, _ := newBudgetService()

	_, err := service.CreateBudget(uuid.New(), BudgetInput{
		Name:        "Oops",
		Period:      domain.BudgetPeriod("fortnightly"),
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.NewFromInt(100),
	})
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got: %v", err)
	}
}

func TestUpdateBudget_NotOwned(t *testing.T) {
	service, budgetRepo, _, _ := newBudgetService()
	owner := uuid.New()

	budgetRepo.AddBudget(&domain.Budget{
		ID:          1,
		UserID:      owner,
		Name:        "January",
		Period:      domain.BudgetPeriodMonthly,
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.NewFromInt(500),
	})

	// A different user sees someone else's budget as missing
	_, err := service.UpdateBudget(uuid.New(), 1, BudgetInput{
		Name:        "Hijack",
		Period:      domain.BudgetPeriodMonthly,
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.NewFromInt(1),
	})
	if !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Errorf("expected ErrBudgetNotFound, got: %v", err)
	}
}

func TestSetAllocations_ValidatesBeforeWriting(t *testing.T) {
	service, budgetRepo, categoryRepo, _ := newBudgetService()
	userID := uuid.New()

	budgetRepo.AddBudget(&domain.Budget{
		ID:     1,
		UserID: userID,
		Name:   "January",
		Period: domain.BudgetPeriodMonthly,
	})
	categoryRepo.AddCategory(&domain.Category{ID: 1, UserID: userID, Name: "Groceries"})

	// Second entry references a missing category; nothing may be written
	_, err := service.SetAllocations(userID, 1, []AllocationInput{
		{CategoryID: 1, Amount: decimal.NewFromInt(100)},
		{CategoryID: 99, Amount: decimal.NewFromInt(50)},
	})
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got: %v", err)
	}

	allocations, _ := budgetRepo.ListAllocations(1)
	if len(allocations) != 0 {
		t.Errorf("expected no allocations written, got %d", len(allocations))
	}
}

func TestSetAllocations_RejectsSubcategoryTarget(t *testing.T) {
	service, budgetRepo, categoryRepo, _ := newBudgetService()
	userID := uuid.New()

	budgetRepo.AddBudget(&domain.Budget{ID: 1, UserID: userID, Name: "January"})
	parent := categoryRepo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})
	sub := categoryRepo.AddCategory(&domain.Category{UserID: userID, Name: "Produce", ParentID: &parent.ID})

	_, err := service.SetAllocations(userID, 1, []AllocationInput{
		{CategoryID: sub.ID, Amount: decimal.NewFromInt(50)},
	})
	if !errors.Is(err, domain.ErrInvalidParentCategory) {
		t.Errorf("expected ErrInvalidParentCategory, got: %v", err)
	}
}

func TestSetAllocations_ReplacesExisting(t *testing.T) {
	service, budgetRepo, categoryRepo, _ := newBudgetService()
	userID := uuid.New()

	budgetRepo.AddBudget(&domain.Budget{ID: 1, UserID: userID, Name: "January"})
	categoryRepo.AddCategory(&domain.Category{ID: 1, UserID: userID, Name: "Groceries"})
	categoryRepo.AddCategory(&domain.Category{ID: 2, UserID: userID, Name: "Transport"})

	_, err := service.SetAllocations(userID, 1, []AllocationInput{
		{CategoryID: 1, Amount: decimal.NewFromInt(100)},
		{CategoryID: 2, Amount: decimal.NewFromInt(50)},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	detail, err := service.SetAllocations(userID, 1, []AllocationInput{
		{CategoryID: 1, Amount: decimal.NewFromInt(75)},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(detail.Allocations) != 1 {
		t.Fatalf("expected 1 allocation after replace, got %d", len(detail.Allocations))
	}
	if !detail.Allocations[0].Amount.Equal(decimal.NewFromInt(75)) {
		t.Errorf("expected amount 75, got %s", detail.Allocations[0].Amount)
	}
}

func TestGetPerformance_EndToEnd(t *testing.T) {
	service, budgetRepo, categoryRepo, transactionRepo := newBudgetService()
	userID := uuid.New()

	budgetRepo.AddBudget(&domain.Budget{
		ID:          1,
		UserID:      userID,
		Name:        "January",
		Period:      domain.BudgetPeriodMonthly,
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.NewFromInt(500),
	})
	categoryRepo.AddCategory(&domain.Category{ID: 1, UserID: userID, Name: "Groceries"})

	if _, err := service.SetAllocations(userID, 1, []AllocationInput{
		{CategoryID: 1, Amount: decimal.NewFromInt(100)},
	}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "Weekly shop",
		Amount:     decimal.NewFromInt(40),
		Date:       time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		CategoryID: 1,
	})

	performance, err := service.GetPerformance(userID, 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !performance.Spent.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected spent 40, got %s", performance.Spent)
	}
	if !performance.Remaining.Equal(decimal.NewFromInt(60)) {
		t.Errorf("expected remaining 60, got %s", performance.Remaining)
	}
}

func TestGetPerformance_NotOwnedSurfacesNotFound(t *testing.T) {
	service, budgetRepo, _, _ := newBudgetService()

	budgetRepo.AddBudget(&domain.Budget{ID: 1, UserID: uuid.New(), Name: "January"})

	_, err := service.GetPerformance(uuid.New(), 1)
	if !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Errorf("expected ErrBudgetNotFound, got: %v", err)
	}
}

func TestDeleteBudget_RemovesAllocations(t *testing.T) {
	service, budgetRepo, categoryRepo, _ := newBudgetService()
	userID := uuid.New()

	budgetRepo.AddBudget(&domain.Budget{ID: 1, UserID: userID, Name: "January"})
	categoryRepo.AddCategory(&domain.Category{ID: 1, UserID: userID, Name: "Groceries"})

	if _, err := service.SetAllocations(userID, 1, []AllocationInput{
		{CategoryID: 1, Amount: decimal.NewFromInt(100)},
	}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if err := service.DeleteBudget(userID, 1); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, err := service.GetBudget(userID, 1); !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Errorf("expected ErrBudgetNotFound after delete, got: %v", err)
	}
	allocations, _ := budgetRepo.ListAllocations(1)
	if len(allocations) != 0 {
		t.Errorf("expected allocations removed with budget, got %d", len(allocations))
	}
}
