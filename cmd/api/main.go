package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/config"
	"github.com/achacynthia/expensetrack-backend/internal/handler"
	"github.com/achacynthia/expensetrack-backend/internal/middleware"
	"github.com/achacynthia/expensetrack-backend/internal/repository/postgres"
	"github.com/achacynthia/expensetrack-backend/internal/repository/storage"
	"github.com/achacynthia/expensetrack-backend/internal/service"
	"github.com/achacynthia/expensetrack-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)

	// Initialize receipt storage (optional, disabled when S3 is not configured)
	var receiptStore storage.ReceiptStore
	if cfg.S3.Enabled() {
		store, err := storage.NewS3ReceiptStore(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize receipt storage")
		}
		receiptStore = store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage enabled")
	} else {
		log.Info().Msg("Receipt storage disabled (S3_BUCKET not set)")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo)
	profileService := service.NewProfileService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo)
	budgetService := service.NewBudgetService(budgetRepo, categoryRepo, transactionRepo)
	reportService := service.NewReportService(transactionRepo)
	exportService := service.NewExportService(transactionRepo, categoryRepo)
	receiptService := service.NewReceiptService(receiptStore)

	// Initialize WebSocket hub and wire event publishing into services
	hub := websocket.NewHub()
	categoryService.SetEventPublisher(hub)
	transactionService.SetEventPublisher(hub)
	budgetService.SetEventPublisher(hub)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	// Per-user rate limiting for data routes
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	transactionHandler := handler.NewTransactionHandler(transactionService, receiptService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	reportHandler := handler.NewReportHandler(reportService)
	exportHandler := handler.NewExportHandler(exportService)

	// WebSocket token validation reuses the Auth0 JWKS but resolves local users
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket JWT validator")
	}
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket endpoint (token passed as query parameter)
	e.GET("/ws", wsHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, middleware.RateLimitMiddleware(rateLimiter), authHandler, profileHandler, categoryHandler, transactionHandler, budgetHandler, reportHandler, exportHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
