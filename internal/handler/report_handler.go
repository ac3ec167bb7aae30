package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/middleware"
	"github.com/achacynthia/expensetrack-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler handles reporting HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// MonthTotalsResponse represents one month's totals
type MonthTotalsResponse struct {
	Month    int    `json:"month"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

// MonthlySummaryResponse represents the per-month totals for a year
type MonthlySummaryResponse struct {
	Year   int                   `json:"year"`
	Months []MonthTotalsResponse `json:"months"`
}

// CategoryTotalResponse represents one category's total
type CategoryTotalResponse struct {
	CategoryID int32  `json:"categoryId"`
	Total      string `json:"total"`
}

// GetMonthlySummary handles GET /reports/monthly?year=YYYY
func (h *ReportHandler) GetMonthlySummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year := time.Now().UTC().Year()
	if y := c.QueryParam("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 1970 || parsed > 9999 {
			return NewValidationError(c, "Invalid year", []ValidationError{
				{Field: "year", Message: "Must be a four-digit year"},
			})
		}
		year = parsed
	}

	summary, err := h.reportService.GetMonthlySummary(userID, year)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Msg("Failed to build monthly summary")
		return NewInternalError(c, "Failed to build monthly summary")
	}

	months := make([]MonthTotalsResponse, len(summary.Months))
	for i, m := range summary.Months {
		months[i] = MonthTotalsResponse{
			Month:    m.Month,
			Income:   m.Income.StringFixed(2),
			Expenses: m.Expenses.StringFixed(2),
			Net:      m.Net.StringFixed(2),
		}
	}

	return c.JSON(http.StatusOK, MonthlySummaryResponse{
		Year:   summary.Year,
		Months: months,
	})
}

// GetCategoryBreakdown handles GET /reports/categories?startDate&endDate&type
func (h *ReportHandler) GetCategoryBreakdown(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	start, err := time.Parse(time.DateOnly, c.QueryParam("startDate"))
	if err != nil {
		return NewValidationError(c, "Invalid startDate", []ValidationError{
			{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	end, err := time.Parse(time.DateOnly, c.QueryParam("endDate"))
	if err != nil {
		return NewValidationError(c, "Invalid endDate", []ValidationError{
			{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	if start.After(end) {
		return NewValidationError(c, "Invalid date range", []ValidationError{
			{Field: "endDate", Message: "End date must not be before start date"},
		})
	}

	transactionType := domain.TransactionTypeExpense
	if t := c.QueryParam("type"); t != "" {
		transactionType = domain.TransactionType(t)
		if transactionType != domain.TransactionTypeIncome && transactionType != domain.TransactionTypeExpense {
			return NewValidationError(c, "Invalid type", []ValidationError{
				{Field: "type", Message: "Type must be one of: income, expense"},
			})
		}
	}

	totals, err := h.reportService.GetCategoryBreakdown(userID, start, end, transactionType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to build category breakdown")
		return NewInternalError(c, "Failed to build category breakdown")
	}

	response := make([]CategoryTotalResponse, len(totals))
	for i, t := range totals {
		response[i] = CategoryTotalResponse{
			CategoryID: t.CategoryID,
			Total:      t.Total.StringFixed(2),
		}
	}

	return c.JSON(http.StatusOK, response)
}
