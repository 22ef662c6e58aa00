package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/trucogame/internal/api/handler"
	"github.com/mcoot/trucogame/internal/api/middleware"
	"github.com/mcoot/trucogame/internal/api/response"
	httpmw "github.com/mcoot/trucogame/internal/middleware"
	"github.com/mcoot/trucogame/internal/services/auth"
	"github.com/mcoot/trucogame/internal/services/game"
	"github.com/mcoot/trucogame/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	GameController *game.Controller

	// Storage is pinged by the health check when it supports Ping (optional)
	Storage storage.Storage
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Register(r, cfg)
	return r
}

// Register mounts the API routes under /api/v1 on r
func Register(r *mux.Router, cfg RouterConfig) {
	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.GameController, cfg.AuthService, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := httpmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Taking a seat issues the session
	api.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods(http.MethodPost)

	// Seat routes (all require auth)
	rooms := api.PathPrefix("/rooms/{code}").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("/state", roomHandler.State).Methods(http.MethodGet)
	rooms.HandleFunc("/play", roomHandler.Play).Methods(http.MethodPost)
	rooms.HandleFunc("/truco", roomHandler.CallTruco).Methods(http.MethodPost)
	rooms.HandleFunc("/truco/respond", roomHandler.RespondTruco).Methods(http.MethodPost)
	rooms.HandleFunc("/new-round", roomHandler.NewRound).Methods(http.MethodPost)
	rooms.HandleFunc("/leave", roomHandler.Leave).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler(cfg.Storage, cfg.Logger)).Methods(http.MethodGet)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthHandler(store storage.Storage, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := store.(pinger)
		if !ok {
			response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
			return
		}

		if err := p.Ping(r.Context()); err != nil {
			logger.Warn("storage ping failed", slog.String("error", err.Error()))
			response.JSON(w, http.StatusServiceUnavailable, response.HealthResponse{Status: "degraded", Storage: "unreachable"})
			return
		}
		response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Storage: "ok"})
	}
}
