package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/trucogame/internal/api/apierr"
	"github.com/mcoot/trucogame/internal/api/middleware"
	"github.com/mcoot/trucogame/internal/api/request"
	"github.com/mcoot/trucogame/internal/api/response"
	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/auth"
	"github.com/mcoot/trucogame/internal/services/game"
	"github.com/mcoot/trucogame/internal/services/view"
)

// RoomHandler handles seat and game endpoints
type RoomHandler struct {
	gameController *game.Controller
	authService    *auth.Service
	logger         *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(gameController *game.Controller, authService *auth.Service, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		gameController: gameController,
		authService:    authService,
		logger:         logger.With(slog.String("component", "api")),
	}
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.JoinRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	session := h.authService.CreateSession(code, strings.TrimSpace(req.Name))
	v, err := h.gameController.Join(r.Context(), code, session.ID, req.Name)
	if err != nil {
		h.authService.InvalidateSession(session.Token)
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResponseFromSession(session, v))
}

// Play handles POST /api/v1/rooms/{code}/play
func (h *RoomHandler) Play(w http.ResponseWriter, r *http.Request) {
	var req request.PlayRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}
	if req.CardIndex == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("card_index is required"))
		return
	}

	h.act(w, r, func(ctx context.Context, code model.RoomCode, session *auth.Session) (*view.View, error) {
		return h.gameController.Play(ctx, code, session.ID, *req.CardIndex, req.Hidden)
	})
}

// CallTruco handles POST /api/v1/rooms/{code}/truco
func (h *RoomHandler) CallTruco(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, code model.RoomCode, session *auth.Session) (*view.View, error) {
		return h.gameController.CallTruco(ctx, code, session.ID)
	})
}

// RespondTruco handles POST /api/v1/rooms/{code}/truco/respond
func (h *RoomHandler) RespondTruco(w http.ResponseWriter, r *http.Request) {
	var req request.RespondTrucoRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}
	if req.Accept == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("accept is required"))
		return
	}

	h.act(w, r, func(ctx context.Context, code model.RoomCode, session *auth.Session) (*view.View, error) {
		return h.gameController.RespondTruco(ctx, code, session.ID, *req.Accept)
	})
}

// NewRound handles POST /api/v1/rooms/{code}/new-round
func (h *RoomHandler) NewRound(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, code model.RoomCode, session *auth.Session) (*view.View, error) {
		return h.gameController.RequestNewRound(ctx, code, session.ID)
	})
}

// State handles GET /api/v1/rooms/{code}/state
func (h *RoomHandler) State(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, code model.RoomCode, session *auth.Session) (*view.View, error) {
		return h.gameController.View(ctx, code, session.ID)
	})
}

// Leave handles POST /api/v1/rooms/{code}/leave. The session ends with the seat.
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	session, code, ok := h.sessionForRoom(w, r)
	if !ok {
		return
	}

	destroyed, err := h.gameController.Leave(r.Context(), code, session.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	h.authService.InvalidateSession(session.Token)

	response.JSON(w, http.StatusOK, response.LeaveResponse{Left: true, RoomClosed: destroyed})
}

type action func(ctx context.Context, code model.RoomCode, session *auth.Session) (*view.View, error)

// act runs fn for the caller's seat. A game rule violation is not an HTTP
// error: the caller gets its unchanged view, as every other seat does.
func (h *RoomHandler) act(w http.ResponseWriter, r *http.Request, fn action) {
	session, code, ok := h.sessionForRoom(w, r)
	if !ok {
		return
	}

	v, err := fn(r.Context(), code, session)
	if err != nil {
		if v != nil && model.IsRuleViolation(err) {
			response.JSON(w, http.StatusOK, response.StateResponse{View: v, Rejected: err.Error()})
			return
		}
		if !model.IsRuleViolation(err) {
			h.logger.Error("room action failed",
				slog.String("room_code", string(code)),
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()))
		}
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StateResponse{View: v})
}

func (h *RoomHandler) sessionForRoom(w http.ResponseWriter, r *http.Request) (*auth.Session, model.RoomCode, bool) {
	session := middleware.MustGetSession(r.Context())
	code := model.RoomCode(mux.Vars(r)["code"])
	if session.Room != code {
		apierr.WriteError(w, apierr.NewWrongRoomError())
		return nil, "", false
	}
	return session, code, true
}
