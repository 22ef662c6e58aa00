package model

// EventType identifies an outbound or control event
type EventType string

const (
	// EventStateUpdate carries a per-seat view after every mutating action
	EventStateUpdate EventType = "state_update"

	// EventRoomClosed tells remaining listeners the room was destroyed
	EventRoomClosed EventType = "room_closed"
)

// ControlAction is an action issued by an external controller
type ControlAction string

const (
	ControlNewRound   ControlAction = "new_round"
	ControlResetMatch ControlAction = "reset_match"
)

// ControlMessage asks the server to act on a room on behalf of an operator
type ControlMessage struct {
	Room   RoomCode      `json:"room"`
	Action ControlAction `json:"action"`
}
