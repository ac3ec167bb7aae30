package handler

import (
	"github.com/achacynthia/expensetrack-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter echo.MiddlewareFunc, authHandler *AuthHandler, profileHandler *ProfileHandler, categoryHandler *CategoryHandler, transactionHandler *TransactionHandler, budgetHandler *BudgetHandler, reportHandler *ReportHandler, exportHandler *ExportHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (protected)
	auth := api.Group("/auth")
	auth.Use(authMiddleware.Authenticate())
	auth.POST("/callback", authHandler.Callback)
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	// Profile routes (protected)
	profile := api.Group("/profile")
	profile.Use(authMiddleware.Authenticate())
	profile.GET("", profileHandler.GetProfile)
	profile.PUT("", profileHandler.UpdateProfile)

	// Category routes (protected, rate limited)
	categories := api.Group("/categories")
	categories.Use(authMiddleware.Authenticate(), rateLimiter)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.GET("/:id/can-delete", categoryHandler.CanDeleteCategory)

	// Transaction routes (protected, rate limited)
	transactions := api.Group("/transactions")
	transactions.Use(authMiddleware.Authenticate(), rateLimiter)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/receipt", transactionHandler.UploadReceipt)
	transactions.DELETE("/:id/receipt", transactionHandler.DeleteReceipt)

	// Budget routes (protected, rate limited)
	budgets := api.Group("/budgets")
	budgets.Use(authMiddleware.Authenticate(), rateLimiter)
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.PUT("/:id/allocations", budgetHandler.SetAllocations)
	budgets.GET("/:id/performance", budgetHandler.GetPerformance)

	// Report routes (protected, rate limited)
	reports := api.Group("/reports")
	reports.Use(authMiddleware.Authenticate(), rateLimiter)
	reports.GET("/monthly", reportHandler.GetMonthlySummary)
	reports.GET("/categories", reportHandler.GetCategoryBreakdown)

	// Export routes (protected, rate limited)
	export := api.Group("/export")
	export.Use(authMiddleware.Authenticate(), rateLimiter)
	export.GET("/transactions.csv", exportHandler.ExportTransactionsCSV)
}
