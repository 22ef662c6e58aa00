package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	httpmw "github.com/mcoot/trucogame/internal/middleware"
	"github.com/mcoot/trucogame/internal/services/auth"
	"github.com/mcoot/trucogame/internal/services/game"
	"github.com/mcoot/trucogame/internal/web/handler"
	"github.com/mcoot/trucogame/internal/web/middleware"
	"github.com/mcoot/trucogame/internal/web/sse"
	"github.com/mcoot/trucogame/internal/web/ws"
)

// RouterConfig holds configuration for the realtime router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	GameController *game.Controller
	HubManager     *sse.HubManager
	WSManager      *ws.Manager
	OriginPatterns []string // Passed to websocket.Accept
}

// NewRouter creates the router for the WebSocket and SSE endpoints
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := httpmw.Logging(cfg.Logger)
	recoveryMiddleware := httpmw.Recovery(cfg.Logger, httpmw.DefaultPanicHandler)
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Create hub manager and socket registry if not provided
	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}
	wsManager := cfg.WSManager
	if wsManager == nil {
		wsManager = ws.NewManager(cfg.Logger)
	}

	// Create handlers
	socketHandler := ws.NewHandler(cfg.GameController, wsManager, cfg.Logger, cfg.OriginPatterns)
	eventsHandler := handler.NewEventsHandler(cfg.GameController, hubManager, cfg.Logger)

	// WebSocket sessions are per connection, no token needed
	r.Handle("/ws/{code}", socketHandler).Methods(http.MethodGet)

	// SSE streams belong to an API session
	protected := r.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/rooms/{code}/events", eventsHandler.Events).Methods(http.MethodGet)

	return r
}
