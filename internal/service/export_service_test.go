package service

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestWriteTransactionsCSV(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	service := NewExportService(transactionRepo, categoryRepo)
	userID := uuid.New()

	groceries := categoryRepo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})
	produce := categoryRepo.AddCategory(&domain.Category{UserID: userID, Name: "Produce", ParentID: &groceries.ID})

	notes := "weekly shop"
	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:        userID,
		Type:          domain.TransactionTypeExpense,
		Name:          "Apples",
		Amount:        decimal.NewFromFloat(12.5),
		Date:          time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:    groceries.ID,
		SubcategoryID: &produce.ID,
		Notes:         &notes,
	})

	var buf bytes.Buffer
	if err := service.WriteTransactionsCSV(&buf, userID, nil, nil); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("expected valid CSV, got: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	header := records[0]
	if header[0] != "Date" || header[5] != "Amount" {
		t.Errorf("unexpected header: %v", header)
	}

	row := records[1]
	if row[0] != "2026-01-10" {
		t.Errorf("expected date 2026-01-10, got %s", row[0])
	}
	if row[3] != "Groceries" {
		t.Errorf("expected category name, got %s", row[3])
	}
	if row[4] != "Produce" {
		t.Errorf("expected subcategory name, got %s", row[4])
	}
	if row[5] != "12.50" {
		t.Errorf("expected amount 12.50, got %s", row[5])
	}
	if row[6] != "weekly shop" {
		t.Errorf("expected notes, got %s", row[6])
	}
}

func TestWriteTransactionsCSV_DateRange(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	service := NewExportService(transactionRepo, categoryRepo)
	userID := uuid.New()

	category := categoryRepo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "In range",
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		CategoryID: category.ID,
	})
	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "Out of range",
		Amount:     decimal.NewFromInt(20),
		Date:       time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		CategoryID: category.ID,
	})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := service.WriteTransactionsCSV(&buf, userID, &start, &end); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("expected valid CSV, got: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[1][2] != "In range" {
		t.Errorf("expected only in-range transaction, got %s", records[1][2])
	}
}

func TestWriteTransactionsCSV_DeletedCategoryFallsBackToID(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	service := NewExportService(transactionRepo, categoryRepo)
	userID := uuid.New()

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "Orphaned",
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		CategoryID: 42,
	})

	var buf bytes.Buffer
	if err := service.WriteTransactionsCSV(&buf, userID, nil, nil); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	records, _ := csv.NewReader(&buf).ReadAll()
	if records[1][3] != "#42" {
		t.Errorf("expected fallback '#42', got %s", records[1][3])
	}
}
