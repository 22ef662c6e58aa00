package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/game"
	"github.com/mcoot/trucogame/internal/web/middleware"
	"github.com/mcoot/trucogame/internal/web/sse"
)

// EventsHandler streams a seat's state updates over SSE
type EventsHandler struct {
	gameController *game.Controller
	hubManager     *sse.HubManager
	logger         *slog.Logger
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(gameController *game.Controller, hubManager *sse.HubManager, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		gameController: gameController,
		hubManager:     hubManager,
		logger:         logger.With(slog.String("component", "sse")),
	}
}

// Events handles GET /rooms/{code}/events.
// Opening the stream (re)connects the session's seat and closing it
// disconnects the seat.
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	code := model.RoomCode(mux.Vars(r)["code"])
	if session.Room != code {
		http.Error(w, "Session belongs to another room", http.StatusForbidden)
		return
	}

	hub := h.hubManager.GetOrCreateHub(code)

	joined := false
	sse.ServeSSE(w, r, hub, session.ID, func() {
		_, err := h.gameController.Join(r.Context(), code, session.ID, session.Name)
		if err != nil {
			h.logger.Debug("sse join rejected",
				slog.String("room_code", string(code)),
				slog.String("error", err.Error()))
			return
		}
		joined = true
	})

	if !joined {
		return
	}
	// The request context is done by now
	if err := h.gameController.Disconnect(context.Background(), code, session.ID); err != nil && !model.IsRuleViolation(err) {
		h.logger.Error("sse disconnect failed",
			slog.String("room_code", string(code)),
			slog.String("error", err.Error()))
	}
}
