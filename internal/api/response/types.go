package response

import (
	"github.com/mcoot/trucogame/internal/services/auth"
	"github.com/mcoot/trucogame/internal/services/view"
)

// JoinResponse is returned when a seat is taken. The token authenticates
// every later request for this seat.
type JoinResponse struct {
	SessionToken string     `json:"session_token"`
	Room         string     `json:"room"`
	View         *view.View `json:"view"`
}

// JoinResponseFromSession builds a JoinResponse
func JoinResponseFromSession(s *auth.Session, v *view.View) JoinResponse {
	return JoinResponse{
		SessionToken: s.Token,
		Room:         string(s.Room),
		View:         v,
	}
}

// StateResponse carries the caller's view after an action. Rejected is set
// when the action broke a game rule and nothing changed.
type StateResponse struct {
	View     *view.View `json:"view"`
	Rejected string     `json:"rejected,omitempty"`
}

// LeaveResponse is returned after vacating a seat
type LeaveResponse struct {
	Left       bool `json:"left"`
	RoomClosed bool `json:"room_closed"`
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage,omitempty"`
}
