package natsbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/game"
	"github.com/mcoot/trucogame/internal/services/view"
)

// Event is the payload published for every state update
type Event struct {
	Type string         `json:"type"`
	Room model.RoomCode `json:"room"`
	Seat int            `json:"seat"`
	View *view.View     `json:"view,omitempty"`
}

// Publisher mirrors state updates onto NATS
type Publisher struct {
	transport Transport
	prefix    string
	logger    *slog.Logger
}

// Ensure Publisher implements game.Publisher
var _ game.Publisher = (*Publisher)(nil)

// NewPublisher creates a new Publisher
func NewPublisher(transport Transport, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{
		transport: transport,
		prefix:    prefix,
		logger:    logger.With(slog.String("component", "nats-publisher")),
	}
}

// Publish sends the update to the seat's subject. Failures are logged; the
// bus never blocks or fails a game action.
func (p *Publisher) Publish(_ context.Context, update game.Update) {
	p.send(SeatSubject(p.prefix, update.Room, update.Seat), Event{
		Type: game.EventStateUpdate,
		Room: update.Room,
		Seat: update.Seat,
		View: update.View,
	})
}

// RoomClosed announces a destroyed room
func (p *Publisher) RoomClosed(code model.RoomCode) {
	p.send(ClosedSubject(p.prefix, code), Event{
		Type: string(model.EventRoomClosed),
		Room: code,
		Seat: -1,
	})
}

func (p *Publisher) send(subject string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode event",
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return
	}
	if err := p.transport.Publish(subject, data); err != nil {
		p.logger.Warn("nats publish failed",
			slog.String("subject", subject),
			slog.String("error", err.Error()))
	}
}
