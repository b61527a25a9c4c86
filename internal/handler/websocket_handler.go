package handler

import (
	"net/http"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WSTokenValidator validates JWT tokens presented on the websocket query
// string and resolves them to a user ID
type WSTokenValidator interface {
	ValidateToken(token string) (uuid.UUID, error)
}

// BookAccess checks that a user can read a book. Satisfied by BookService.
type BookAccess interface {
	GetBook(userID uuid.UUID, bookID int32) (*domain.Book, error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      WSTokenValidator
	books          BookAccess
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator WSTokenValidator, books BookAccess, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		books:          books,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins. Requests
// without an Origin header (non-browser clients) are allowed.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws. Browsers cannot
// set headers on websocket handshakes, so the JWT rides in a query parameter.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	userID, err := h.validator.ValidateToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	bookID, err := parseQueryID(c, "bookId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing or invalid bookId")
	}

	// Subscriptions are scoped to a book; only members may listen
	if _, err := h.books.GetBook(userID, bookID); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", userID.String()).
			Int32("book_id", bookID).
			Msg("WebSocket connection rejected: no book access")
		return echo.NewHTTPError(http.StatusForbidden, "no access to this book")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, bookID, h.hub)
	h.hub.Register(client)

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}
