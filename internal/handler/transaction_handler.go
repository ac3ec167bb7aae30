package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/middleware"
	"github.com/achacynthia/expensetrack-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	receiptService     *service.ReceiptService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, receiptService *service.ReceiptService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		receiptService:     receiptService,
	}
}

// TransactionRequest represents the create/update transaction request body.
// The category may be referenced by id or, for older clients, by name.
type TransactionRequest struct {
	Type          string  `json:"type"`
	Name          string  `json:"name"`
	Amount        string  `json:"amount"`
	Date          *string `json:"date,omitempty"`
	CategoryID    *int32  `json:"categoryId,omitempty"`
	Category      string  `json:"category,omitempty"`
	SubcategoryID *int32  `json:"subcategoryId,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// ReceiptResponse represents a stored receipt in API responses
type ReceiptResponse struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID            int32            `json:"id"`
	Type          string           `json:"type"`
	Name          string           `json:"name"`
	Amount        string           `json:"amount"`
	Date          string           `json:"date"`
	CategoryID    int32            `json:"categoryId"`
	SubcategoryID *int32           `json:"subcategoryId,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	Receipt       *ReceiptResponse `json:"receipt,omitempty"`
	CreatedAt     string           `json:"createdAt"`
	UpdatedAt     string           `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents a page of transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            t.ID,
		Type:          string(t.Type),
		Name:          t.Name,
		Amount:        t.Amount.StringFixed(2),
		Date:          t.Date.Format(time.DateOnly),
		CategoryID:    t.CategoryID,
		SubcategoryID: t.SubcategoryID,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     t.UpdatedAt.Format(time.RFC3339),
	}
	if t.Receipt != nil {
		resp.Receipt = &ReceiptResponse{
			ID:           t.Receipt.ID,
			ThumbnailURL: t.Receipt.ThumbnailURL,
			DisplayURL:   t.Receipt.DisplayURL,
			OriginalURL:  t.Receipt.OriginalURL,
		}
	}
	return resp
}

// parseTransactionInput converts a request body into a service input
func parseTransactionInput(c echo.Context, req TransactionRequest) (service.TransactionInput, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return service.TransactionInput{}, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse(time.DateOnly, *req.Date)
		if err != nil {
			return service.TransactionInput{}, NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		date = &parsed
	}

	return service.TransactionInput{
		Type:          domain.TransactionType(req.Type),
		Name:          req.Name,
		Amount:        amount,
		Date:          date,
		Category:      domain.CategoryRef{ID: req.CategoryID, Name: req.Category},
		SubcategoryID: req.SubcategoryID,
		Notes:         req.Notes,
	}, nil
}

// transactionErrorResponse maps domain validation errors to problem responses
func transactionErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		})
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: income, expense"},
		})
	case errors.Is(err, domain.ErrCategoryRefRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category is required"},
		})
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category not found"},
		})
	case errors.Is(err, domain.ErrUnknownCategoryName):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Unknown category name"},
		})
	case errors.Is(err, domain.ErrSubcategoryMismatch):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "subcategoryId", Message: "Subcategory does not belong to the category"},
		})
	case errors.Is(err, domain.ErrNotesTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "notes", Message: "Notes must be 1000 characters or less"},
		})
	}
	return nil
}

// CreateTransaction handles POST /transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseTransactionInput(c, req)
	if err != nil {
		return err
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input)
	if err != nil {
		if resp := transactionErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters := &domain.TransactionFilters{}

	if t := c.QueryParam("type"); t != "" {
		transactionType := domain.TransactionType(t)
		if transactionType != domain.TransactionTypeIncome && transactionType != domain.TransactionTypeExpense {
			return NewValidationError(c, "Invalid type filter", []ValidationError{
				{Field: "type", Message: "Type must be one of: income, expense"},
			})
		}
		filters.Type = &transactionType
	}

	if cid := c.QueryParam("categoryId"); cid != "" {
		parsed, err := strconv.ParseInt(cid, 10, 32)
		if err != nil {
			return NewValidationError(c, "Invalid categoryId filter", []ValidationError{
				{Field: "categoryId", Message: "Must be an integer"},
			})
		}
		categoryID := int32(parsed)
		filters.CategoryID = &categoryID
	}

	if sd := c.QueryParam("startDate"); sd != "" {
		parsed, err := time.Parse(time.DateOnly, sd)
		if err != nil {
			return NewValidationError(c, "Invalid startDate filter", []ValidationError{
				{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		filters.StartDate = &parsed
	}

	if ed := c.QueryParam("endDate"); ed != "" {
		parsed, err := time.Parse(time.DateOnly, ed)
		if err != nil {
			return NewValidationError(c, "Invalid endDate filter", []ValidationError{
				{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		filters.EndDate = &parsed
	}

	if p := c.QueryParam("page"); p != "" {
		parsed, err := strconv.ParseInt(p, 10, 32)
		if err != nil || parsed < 1 {
			return NewValidationError(c, "Invalid page", []ValidationError{
				{Field: "page", Message: "Must be a positive integer"},
			})
		}
		filters.Page = int32(parsed)
	}

	if ps := c.QueryParam("pageSize"); ps != "" {
		parsed, err := strconv.ParseInt(ps, 10, 32)
		if err != nil || parsed < 1 {
			return NewValidationError(c, "Invalid pageSize", []ValidationError{
				{Field: "pageSize", Message: "Must be a positive integer"},
			})
		}
		filters.PageSize = int32(parsed)
	}

	page, err := h.transactionService.GetTransactions(userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	data := make([]TransactionResponse, len(page.Data))
	for i, t := range page.Data {
		data[i] = toTransactionResponse(t)
	}

	return c.JSON(http.StatusOK, PaginatedTransactionsResponse{
		Data:       data,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	})
}

// GetTransaction handles GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction handles PUT /transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseTransactionInput(c, req)
	if err != nil {
		return err
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if resp := transactionErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction handles DELETE /transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(userID, id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadReceipt handles POST /transactions/:id/receipt
func (h *TransactionHandler) UploadReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	receipt, err := h.receiptService.ProcessAndUpload(c.Request().Context(), userID, transaction.ID, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceiptTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 5MB"},
			})
		case errors.Is(err, service.ErrReceiptInvalidFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP"},
			})
		case errors.Is(err, service.ErrReceiptTooSmall):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Image too small. Minimum 50x50 pixels"},
			})
		case errors.Is(err, service.ErrReceiptInvalidData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to upload receipt")
			return NewInternalError(c, "Failed to upload receipt")
		}
	}

	updated, err := h.transactionService.AttachReceipt(userID, transaction.ID, receipt)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to attach receipt")
		return NewInternalError(c, "Failed to attach receipt")
	}

	// Remove the replaced receipt only after the new metadata is
	// persisted, so the row never points at deleted objects.
	if transaction.Receipt != nil {
		if err := h.receiptService.Delete(c.Request().Context(), userID, transaction.ID, transaction.Receipt); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to delete previous receipt")
		}
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("transaction_id", id).
		Str("receipt_id", receipt.ID).
		Msg("Receipt uploaded")

	return c.JSON(http.StatusCreated, toTransactionResponse(updated))
}

// DeleteReceipt handles DELETE /transactions/:id/receipt
func (h *TransactionHandler) DeleteReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	if transaction.Receipt == nil {
		return NewNotFoundError(c, "Transaction has no receipt")
	}

	if h.receiptService != nil && h.receiptService.IsEnabled() {
		if err := h.receiptService.Delete(c.Request().Context(), userID, transaction.ID, transaction.Receipt); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to delete receipt objects")
		}
	}

	updated, err := h.transactionService.DetachReceipt(userID, transaction.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int32("transaction_id", id).Msg("Failed to detach receipt")
		return NewInternalError(c, "Failed to detach receipt")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(updated))
}
