package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/moneybook/moneybook-backend/internal/config"
	"github.com/moneybook/moneybook-backend/internal/handler"
	"github.com/moneybook/moneybook-backend/internal/middleware"
	"github.com/moneybook/moneybook-backend/internal/repository/postgres"
	"github.com/moneybook/moneybook-backend/internal/repository/storage"
	"github.com/moneybook/moneybook-backend/internal/service"
	"github.com/moneybook/moneybook-backend/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Moneybook API
// @version 1.0
// @description Multi-currency shared expense tracking API
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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
	currencyRepo := postgres.NewCurrencyRepository(pool)
	bookRepo := postgres.NewBookRepository(pool)
	memberRepo := postgres.NewMemberRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	tagRepo := postgres.NewTagRepository(pool)
	personRepo := postgres.NewPersonRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	apiTokenRepo := postgres.NewAPITokenRepository(pool)

	// Receipt storage is optional; without credentials the receipt
	// endpoints respond 503
	var receiptStorage storage.ReceiptRepository
	if cfg.S3.AccessKeyID != "" || cfg.S3.Endpoint != "" {
		s3Repo, err := storage.NewS3ReceiptRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize receipt storage")
		}
		receiptStorage = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage enabled")
	} else {
		log.Warn().Msg("Receipt storage not configured; receipt endpoints disabled")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo)
	profileService := service.NewProfileService(userRepo)
	currencyService := service.NewCurrencyService(currencyRepo)
	bookService := service.NewBookService(bookRepo, currencyRepo, memberRepo)
	memberService := service.NewMemberService(memberRepo, userRepo, bookRepo, currencyRepo)
	accountService := service.NewAccountService(accountRepo, bookRepo, currencyRepo, memberRepo)
	transactionService := service.NewTransactionService(transactionRepo, accountRepo, categoryRepo, personRepo, tagRepo, memberRepo)
	categoryService := service.NewCategoryService(categoryRepo, transactionRepo, memberRepo)
	tagService := service.NewTagService(tagRepo, transactionRepo, memberRepo)
	personService := service.NewPersonService(personRepo, transactionRepo, memberRepo)
	budgetService := service.NewBudgetService(budgetRepo, categoryRepo, memberRepo)
	reportService := service.NewReportService(reportRepo, bookRepo, currencyRepo, memberRepo)
	receiptService := service.NewReceiptService(receiptStorage, transactionRepo, memberRepo)
	apiTokenService := service.NewAPITokenService(apiTokenRepo)

	// WebSocket hub broadcasts entity changes to book subscribers
	hub := websocket.NewHub()
	bookService.SetEventPublisher(hub)
	memberService.SetEventPublisher(hub)
	accountService.SetEventPublisher(hub)
	transactionService.SetEventPublisher(hub)
	categoryService.SetEventPublisher(hub)
	tagService.SetEventPublisher(hub)
	personService.SetEventPublisher(hub)
	budgetService.SetEventPublisher(hub)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	apiTokenAuth := middleware.NewAPITokenAuthMiddleware(apiTokenService)
	dualAuth := middleware.NewDualAuthMiddleware(authMiddleware, apiTokenAuth)

	// Per-token rate limiting for API token requests
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// WebSocket token validator shares the Auth0 tenant with the HTTP
	// middleware but resolves users itself
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create websocket JWT validator")
	}

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Profile:     handler.NewProfileHandler(profileService),
		Currency:    handler.NewCurrencyHandler(currencyService),
		Book:        handler.NewBookHandler(bookService),
		Member:      handler.NewMemberHandler(memberService),
		Account:     handler.NewAccountHandler(accountService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Category:    handler.NewCategoryHandler(categoryService),
		Tag:         handler.NewTagHandler(tagService),
		Person:      handler.NewPersonHandler(personService),
		Budget:      handler.NewBudgetHandler(budgetService),
		Report:      handler.NewReportHandler(reportService),
		Receipt:     handler.NewReceiptHandler(receiptService),
		APIToken:    handler.NewAPITokenHandler(apiTokenService),
		WebSocket:   handler.NewWebSocketHandler(hub, wsValidator, bookService, cfg.CORSOrigins),
	}

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

	// Register API routes
	handler.RegisterRoutes(e, dualAuth, rateLimiter, handlers)

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
