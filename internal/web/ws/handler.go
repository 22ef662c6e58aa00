package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/auth"
	"github.com/mcoot/trucogame/internal/services/game"
)

// Handler upgrades requests for /ws/{code} and drives the controller from
// client messages
type Handler struct {
	controller     *game.Controller
	manager        *Manager
	logger         *slog.Logger
	originPatterns []string
}

// NewHandler creates a new websocket Handler. originPatterns is passed to
// websocket.Accept; empty allows same-origin requests only.
func NewHandler(controller *game.Controller, manager *Manager, logger *slog.Logger, originPatterns []string) *Handler {
	return &Handler{
		controller:     controller,
		manager:        manager,
		logger:         logger.With(slog.String("component", "ws")),
		originPatterns: originPatterns,
	}
}

// ServeHTTP handles GET /ws/{code}
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])
	if code == "" {
		http.Error(w, "room code required", http.StatusBadRequest)
		return
	}

	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("ws accept failed", slog.String("error", err.Error()))
		return
	}

	session := auth.NewSessionID()
	conn := newConn(socket, code, session, h.logger)
	h.manager.add(conn)

	ctx := r.Context()
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		conn.writePump(ctx)
	}()

	h.logger.Debug("ws connected",
		slog.String("room_code", string(code)),
		slog.String("session", string(session)))

	joined := h.readLoop(ctx, conn)

	h.manager.remove(conn)
	conn.close(websocket.StatusNormalClosure, "")
	<-pumpDone

	if joined {
		// The request context is gone once the peer hangs up
		if err := h.controller.Disconnect(context.Background(), code, session); err != nil &&
			!errors.Is(err, model.ErrRoomNotFound) && !errors.Is(err, model.ErrSeatNotFound) {
			h.logger.Error("ws disconnect failed",
				slog.String("room_code", string(code)),
				slog.String("error", err.Error()))
		}
	}
	h.logger.Debug("ws closed",
		slog.String("room_code", string(code)),
		slog.String("session", string(session)))
}

// readLoop dispatches messages until the socket fails and reports whether the
// session holds a seat when it ends
func (h *Handler) readLoop(ctx context.Context, conn *Conn) bool {
	joined := false
	for {
		typ, data, err := conn.ws.Read(ctx)
		if err != nil {
			return joined
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("ws malformed message",
				slog.String("session", string(conn.session)),
				slog.String("error", err.Error()))
			continue
		}

		switch h.dispatch(ctx, conn, msg) {
		case seated:
			joined = true
		case unseated:
			joined = false
		case closed:
			return false
		}
	}
}

type seatChange int

const (
	unchanged seatChange = iota
	seated
	unseated
	closed
)

func (h *Handler) dispatch(ctx context.Context, conn *Conn, msg ClientMessage) seatChange {
	code, session := conn.room, conn.session

	var err error
	change := unchanged
	switch msg.Type {
	case MsgJoin:
		_, err = h.controller.Join(ctx, code, session, msg.Name)
		if err == nil {
			change = seated
		}
	case MsgPlay:
		_, err = h.controller.Play(ctx, code, session, msg.CardIndex, msg.Hidden)
	case MsgCallTruco:
		_, err = h.controller.CallTruco(ctx, code, session)
	case MsgRespondTruco:
		_, err = h.controller.RespondTruco(ctx, code, session, msg.Accept)
	case MsgRequestNewRound:
		_, err = h.controller.RequestNewRound(ctx, code, session)
	case MsgLeave:
		var destroyed bool
		destroyed, err = h.controller.Leave(ctx, code, session)
		if err == nil {
			change = unseated
			if destroyed {
				change = closed
			}
		}
	default:
		h.logger.Debug("ws unknown message type",
			slog.String("session", string(session)),
			slog.String("type", msg.Type))
		return unchanged
	}

	// Rule violations were already answered with the unchanged state
	if err != nil && !model.IsRuleViolation(err) {
		h.logger.Debug("ws action failed",
			slog.String("room_code", string(code)),
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
	}
	return change
}
