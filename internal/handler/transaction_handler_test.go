package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/service"
	"github.com/achacynthia/expensetrack-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newTransactionHandlerTest() (*TransactionHandler, *testutil.MockTransactionRepository, *testutil.MockCategoryRepository, uuid.UUID) {
	transactionRepo := testutil.NewMockTransactionRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo)
	handler := NewTransactionHandler(transactionService, nil)
	userID := uuid.New()
	categoryRepo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})
	return handler, transactionRepo, categoryRepo, userID
}

func TestCreateTransaction_Success(t *testing.T) {
	e := echo.New()
	handler, _, _, userID := newTransactionHandlerTest()

	body := `{"type": "expense", "name": "Weekly shop", "amount": "42.50", "date": "2026-01-15", "categoryId": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupUserContext(c, userID)

	err := handler.CreateTransaction(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Amount != "42.50" {
		t.Errorf("Expected amount '42.50', got %s", response.Amount)
	}

	if response.Date != "2026-01-15" {
		t.Errorf("Expected date '2026-01-15', got %s", response.Date)
	}

	if response.CategoryID != 1 {
		t.Errorf("Expected categoryId 1, got %d", response.CategoryID)
	}
}

func TestCreateTransaction_InvalidAmount(t *testing.T) {
	e := echo.New()
	handler, _, _, userID := newTransactionHandlerTest()

	body := `{"type": "expense", "name": "Bad", "amount": "not-a-number", "categoryId": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupUserContext(c, userID)

	err := handler.CreateTransaction(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateTransaction_Unauthenticated(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newTransactionHandlerTest()

	body := `{"type": "expense", "name": "Shop", "amount": "10.00", "categoryId": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreateTransaction(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestGetTransactions_Pagination(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, _, userID := newTransactionHandlerTest()

	for i := 0; i < 25; i++ {
		transactionRepo.AddTransaction(&domain.Transaction{
			UserID:     userID,
			Type:       domain.TransactionTypeExpense,
			Name:       "Expense",
			Amount:     decimal.NewFromInt(10),
			Date:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			CategoryID: 1,
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?page=2&pageSize=20", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupUserContext(c, userID)

	err := handler.GetTransactions(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response PaginatedTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.TotalItems != 25 {
		t.Errorf("Expected 25 total items, got %d", response.TotalItems)
	}

	if response.TotalPages != 2 {
		t.Errorf("Expected 2 total pages, got %d", response.TotalPages)
	}

	if len(response.Data) != 5 {
		t.Errorf("Expected 5 items on page 2, got %d", len(response.Data))
	}
}

func TestGetTransactions_InvalidTypeFilter(t *testing.T) {
	e := echo.New()
	handler, _, _, userID := newTransactionHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?type=savings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupUserContext(c, userID)

	err := handler.GetTransactions(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	e := echo.New()
	handler, _, _, userID := newTransactionHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/999", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("999")

	setupUserContext(c, userID)

	err := handler.GetTransaction(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestGetTransaction_OtherUsersTransaction(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, _, userID := newTransactionHandlerTest()

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     uuid.New(),
		Type:       domain.TransactionTypeExpense,
		Name:       "Not yours",
		Amount:     decimal.NewFromInt(5),
		Date:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CategoryID: 1,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	setupUserContext(c, userID)

	err := handler.GetTransaction(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for another user's transaction, got %d", rec.Code)
	}
}

func TestUpdateTransaction_Success(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, _, userID := newTransactionHandlerTest()

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "Old name",
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CategoryID: 1,
	})

	body := `{"type": "expense", "name": "New name", "amount": "15.75", "date": "2026-01-16", "categoryId": 1}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/transactions/1", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	setupUserContext(c, userID)

	err := handler.UpdateTransaction(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Name != "New name" {
		t.Errorf("Expected name 'New name', got %s", response.Name)
	}

	if response.Amount != "15.75" {
		t.Errorf("Expected amount '15.75', got %s", response.Amount)
	}
}

func TestDeleteTransaction_Success(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, _, userID := newTransactionHandlerTest()

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "To delete",
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CategoryID: 1,
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	setupUserContext(c, userID)

	err := handler.DeleteTransaction(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	// Second delete should 404
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/1", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupUserContext(c, userID)

	if err := handler.DeleteTransaction(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on second delete, got %d", rec.Code)
	}
}

func TestUploadReceipt_StorageDisabled(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, _, userID := newTransactionHandlerTest()

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "With receipt",
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CategoryID: 1,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/1/receipt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	setupUserContext(c, userID)

	err := handler.UploadReceipt(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 when storage is not configured, got %d", rec.Code)
	}
}

// stubReceiptStore is an in-memory ReceiptStore that records object paths.
type stubReceiptStore struct {
	uploads []string
	deletes []string
}

func (s *stubReceiptStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	s.uploads = append(s.uploads, objectPath)
	return "https://cdn.example.com/" + objectPath, nil
}

func (s *stubReceiptStore) Delete(ctx context.Context, objectPath string) error {
	s.deletes = append(s.deletes, objectPath)
	return nil
}

func (s *stubReceiptStore) GenerateURL(objectPath string) string {
	return "https://cdn.example.com/" + objectPath
}

func newReceiptUploadRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "receipt.png")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if err := png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 60, 60))); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func TestUploadReceipt_ReplacesPreviousReceipt(t *testing.T) {
	e := echo.New()
	transactionRepo := testutil.NewMockTransactionRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo)
	store := &stubReceiptStore{}
	handler := NewTransactionHandler(transactionService, service.NewReceiptService(store))
	userID := uuid.New()
	categoryRepo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "With receipt",
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CategoryID: 1,
		Receipt: &domain.ReceiptImage{
			ID:          "old-receipt",
			OriginalURL: "https://cdn.example.com/receipts/old-receipt_original.png",
		},
	})

	req := newReceiptUploadRequest(t, "/api/v1/transactions/1/receipt")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	setupUserContext(c, userID)

	err := handler.UploadReceipt(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Receipt == nil {
		t.Fatal("Expected a receipt in the response")
	}
	if response.Receipt.ID == "old-receipt" {
		t.Errorf("Expected a new receipt id, still got the old one")
	}

	deletedOld := 0
	for _, p := range store.deletes {
		if strings.Contains(p, "old-receipt") {
			deletedOld++
		}
	}
	if deletedOld != 3 {
		t.Errorf("Expected all 3 old receipt objects deleted, got %d: %v", deletedOld, store.deletes)
	}
}

func TestUploadReceipt_KeepsOldObjectsWhenAttachFails(t *testing.T) {
	e := echo.New()
	transactionRepo := testutil.NewMockTransactionRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo)
	store := &stubReceiptStore{}
	handler := NewTransactionHandler(transactionService, service.NewReceiptService(store))
	userID := uuid.New()
	categoryRepo.AddCategory(&domain.Category{UserID: userID, Name: "Groceries"})

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "With receipt",
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CategoryID: 1,
		Receipt: &domain.ReceiptImage{
			ID:          "old-receipt",
			OriginalURL: "https://cdn.example.com/receipts/old-receipt_original.png",
		},
	})
	transactionRepo.SetReceiptErr = errors.New("write failed")

	req := newReceiptUploadRequest(t, "/api/v1/transactions/1/receipt")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	setupUserContext(c, userID)

	err := handler.UploadReceipt(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rec.Code)
	}

	// The row still references the old receipt, so its objects must survive
	if len(store.deletes) != 0 {
		t.Errorf("Expected no deletions when the metadata write fails, got %v", store.deletes)
	}
}

func TestDeleteReceipt_NoReceipt(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, _, userID := newTransactionHandlerTest()

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "No receipt",
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CategoryID: 1,
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/1/receipt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	setupUserContext(c, userID)

	err := handler.DeleteReceipt(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteReceipt_Success(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, _, userID := newTransactionHandlerTest()

	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     userID,
		Type:       domain.TransactionTypeExpense,
		Name:       "Has receipt",
		Amount:     decimal.NewFromInt(10),
		Date:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CategoryID: 1,
		Receipt: &domain.ReceiptImage{
			ID:           "abc123",
			ThumbnailURL: "https://cdn.example.com/abc123_thumb.jpg",
			DisplayURL:   "https://cdn.example.com/abc123_display.jpg",
			OriginalURL:  "https://cdn.example.com/abc123.jpg",
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/1/receipt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	setupUserContext(c, userID)

	err := handler.DeleteReceipt(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Receipt != nil {
		t.Error("Expected receipt to be removed from the transaction")
	}
}
