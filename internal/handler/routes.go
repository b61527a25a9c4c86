package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers bundles every HTTP handler for route registration
type Handlers struct {
	Auth        *AuthHandler
	Profile     *ProfileHandler
	Currency    *CurrencyHandler
	Book        *BookHandler
	Member      *MemberHandler
	Account     *AccountHandler
	Transaction *TransactionHandler
	Category    *CategoryHandler
	Tag         *TagHandler
	Person      *PersonHandler
	Budget      *BudgetHandler
	Report      *ReportHandler
	Receipt     *ReceiptHandler
	APIToken    *APITokenHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes. Book-scoped routes accept either a
// session JWT or an API token; auth, profile and token management are
// session-only.
func RegisterRoutes(e *echo.Echo, dualAuth *middleware.DualAuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	api := e.Group("/api/v1")

	// Auth routes (session only)
	auth := api.Group("/auth")
	auth.Use(dualAuth.JWTOnly())
	auth.POST("/callback", h.Auth.Callback)
	auth.POST("/logout", h.Auth.Logout)

	// Profile routes (session only)
	profile := api.Group("/profile")
	profile.Use(dualAuth.JWTOnly())
	profile.GET("", h.Profile.GetProfile)
	profile.PUT("", h.Profile.UpdateProfile)

	// API token management (session only; a token cannot manage tokens)
	apiTokens := api.Group("/api-tokens")
	apiTokens.Use(dualAuth.JWTOnly())
	apiTokens.POST("", h.APIToken.CreateAPIToken)
	apiTokens.GET("", h.APIToken.GetAPITokens)
	apiTokens.DELETE("/:id", h.APIToken.RevokeAPIToken)

	// Currency registry routes
	currencies := api.Group("/currencies")
	currencies.Use(dualAuth.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	currencies.POST("", h.Currency.CreateCurrency)
	currencies.GET("", h.Currency.GetCurrencies)
	currencies.GET("/:code", h.Currency.GetCurrency)
	currencies.PUT("/:code", h.Currency.UpdateCurrency)
	currencies.DELETE("/:code", h.Currency.DeleteCurrency)

	// Book routes
	books := api.Group("/books")
	books.Use(dualAuth.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	books.POST("", h.Book.CreateBook)
	books.GET("", h.Book.GetBooks)
	books.GET("/:bookId", h.Book.GetBook)
	books.PUT("/:bookId", h.Book.UpdateBook)
	books.DELETE("/:bookId", h.Book.DeleteBook)

	// Membership routes
	books.GET("/:bookId/members", h.Member.GetMembers)
	books.POST("/:bookId/members", h.Member.InviteMember)
	books.PUT("/:bookId/members/:userId", h.Member.UpdateMemberPermission)
	books.DELETE("/:bookId/members/:userId", h.Member.RemoveMember)
	books.POST("/:bookId/transfer", h.Member.TransferBook)

	// Account routes
	books.POST("/:bookId/accounts", h.Account.CreateAccount)
	books.GET("/:bookId/accounts", h.Account.GetAccounts)
	books.GET("/:bookId/accounts/balances", h.Account.GetBalances)
	books.GET("/:bookId/accounts/:id", h.Account.GetAccount)
	books.PUT("/:bookId/accounts/:id", h.Account.UpdateAccount)
	books.DELETE("/:bookId/accounts/:id", h.Account.DeleteAccount)

	// Transaction routes
	books.POST("/:bookId/transactions", h.Transaction.CreateTransaction)
	books.GET("/:bookId/transactions", h.Transaction.GetTransactions)
	books.GET("/:bookId/transactions/:id", h.Transaction.GetTransaction)
	books.PUT("/:bookId/transactions/:id", h.Transaction.UpdateTransaction)
	books.DELETE("/:bookId/transactions/:id", h.Transaction.DeleteTransaction)
	books.POST("/:bookId/transfers", h.Transaction.CreateTransfer)

	// Receipt routes
	books.POST("/:bookId/transactions/:id/receipt", h.Receipt.AttachReceipt)
	books.GET("/:bookId/transactions/:id/receipt", h.Receipt.GetReceipt)
	books.DELETE("/:bookId/transactions/:id/receipt", h.Receipt.DeleteReceipt)

	// Category routes
	books.POST("/:bookId/categories", h.Category.CreateCategory)
	books.GET("/:bookId/categories", h.Category.GetCategories)
	books.GET("/:bookId/categories/:id", h.Category.GetCategory)
	books.PUT("/:bookId/categories/:id", h.Category.UpdateCategory)
	books.DELETE("/:bookId/categories/:id", h.Category.DeleteCategory)

	// Tag routes
	books.POST("/:bookId/tags", h.Tag.CreateTag)
	books.GET("/:bookId/tags", h.Tag.GetTags)
	books.GET("/:bookId/tags/:id", h.Tag.GetTag)
	books.PUT("/:bookId/tags/:id", h.Tag.UpdateTag)
	books.DELETE("/:bookId/tags/:id", h.Tag.DeleteTag)

	// Person routes
	books.POST("/:bookId/persons", h.Person.CreatePerson)
	books.GET("/:bookId/persons", h.Person.GetPersons)
	books.GET("/:bookId/persons/:id", h.Person.GetPerson)
	books.PUT("/:bookId/persons/:id", h.Person.UpdatePerson)
	books.DELETE("/:bookId/persons/:id", h.Person.DeletePerson)

	// Budget routes
	books.POST("/:bookId/budgets", h.Budget.CreateBudget)
	books.GET("/:bookId/budgets", h.Budget.GetBudgets)
	books.GET("/:bookId/budgets/:id", h.Budget.GetBudget)
	books.PUT("/:bookId/budgets/:id", h.Budget.UpdateBudget)
	books.DELETE("/:bookId/budgets/:id", h.Budget.DeleteBudget)

	// Report routes
	books.GET("/:bookId/reports/categories", h.Report.GetCategoryTotals)
	books.GET("/:bookId/reports/accounts", h.Report.GetAccountTotals)
	books.GET("/:bookId/reports/timeline", h.Report.GetTimeline)
	books.GET("/:bookId/reports/stats", h.Report.GetBookStats)

	// WebSocket endpoint. Auth rides in the query string since browsers
	// cannot set headers on the handshake.
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API documentation
	e.GET("/openapi.json", ServeOpenAPI3Spec)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
