package game

import (
	"context"

	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/view"
)

// Update is one projected view addressed to one seat's session
type Update struct {
	Room    model.RoomCode
	Seat    int
	Session model.SessionID
	View    *view.View
}

// Publisher delivers state updates to clients
type Publisher interface {
	Publish(ctx context.Context, update Update)
}

// Publishers fans an update out to several publishers
type Publishers []Publisher

// Publish delivers the update to every publisher in order
func (p Publishers) Publish(ctx context.Context, update Update) {
	for _, pub := range p {
		pub.Publish(ctx, update)
	}
}

// PublisherFunc adapts a function to the Publisher interface
type PublisherFunc func(ctx context.Context, update Update)

// Publish calls f
func (f PublisherFunc) Publish(ctx context.Context, update Update) {
	f(ctx, update)
}

// EventStateUpdate names the message that carries a projected view
const EventStateUpdate = string(model.EventStateUpdate)

// StateUpdate is the wire envelope of a view, shared by every transport
type StateUpdate struct {
	Type string     `json:"type"`
	View *view.View `json:"view"`
}

// NewStateUpdate wraps a view for sending
func NewStateUpdate(v *view.View) StateUpdate {
	return StateUpdate{Type: EventStateUpdate, View: v}
}
