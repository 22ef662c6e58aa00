package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/game"
)

// Broadcaster delivers game updates to SSE clients
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// Ensure Broadcaster implements game.Publisher
var _ game.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish sends the update's view to the addressed session's streams
func (b *Broadcaster) Publish(_ context.Context, update game.Update) {
	hub := b.hubManager.GetHub(update.Room)
	if hub == nil {
		return
	}

	data, err := json.Marshal(game.NewStateUpdate(update.View))
	if err != nil {
		b.logger.Error("sse failed to encode view",
			slog.String("room_code", string(update.Room)),
			slog.String("error", err.Error()))
		return
	}
	hub.SendEvent(update.Session, game.EventStateUpdate, string(data))
}

// RoomClosed tells every stream of a destroyed room and drops its hub
func (b *Broadcaster) RoomClosed(code model.RoomCode) {
	hub := b.hubManager.GetHub(code)
	if hub == nil {
		return
	}
	hub.BroadcastEvent(string(model.EventRoomClosed), `{"room":"`+string(code)+`"}`)
	b.hubManager.RemoveHub(code)
}
