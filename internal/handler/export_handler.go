package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/middleware"
	"github.com/achacynthia/expensetrack-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ExportHandler handles data export HTTP requests
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportTransactionsCSV handles GET /export/transactions.csv
func (h *ExportHandler) ExportTransactionsCSV(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var start, end *time.Time
	if sd := c.QueryParam("startDate"); sd != "" {
		parsed, err := time.Parse(time.DateOnly, sd)
		if err != nil {
			return NewValidationError(c, "Invalid startDate", []ValidationError{
				{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		start = &parsed
	}
	if ed := c.QueryParam("endDate"); ed != "" {
		parsed, err := time.Parse(time.DateOnly, ed)
		if err != nil {
			return NewValidationError(c, "Invalid endDate", []ValidationError{
				{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		end = &parsed
	}
	if start != nil && end != nil && start.After(*end) {
		return NewValidationError(c, "Invalid date range", []ValidationError{
			{Field: "endDate", Message: "End date must not be before start date"},
		})
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().UTC().Format(time.DateOnly))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	if err := h.exportService.WriteTransactionsCSV(c.Response(), userID, start, end); err != nil {
		// Headers are already sent; log and abort the stream
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to export transactions")
		return err
	}

	return nil
}
