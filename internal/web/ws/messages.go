package ws

import "github.com/mcoot/trucogame/internal/model"

// Client message types
const (
	MsgJoin            = "join"
	MsgPlay            = "play"
	MsgCallTruco       = "call_truco"
	MsgRespondTruco    = "respond_truco"
	MsgRequestNewRound = "request_new_round"
	MsgLeave           = "leave"
)

// ClientMessage is anything a client sends. Fields apply per Type.
type ClientMessage struct {
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
	CardIndex int    `json:"card_index"`
	Hidden    bool   `json:"hidden,omitempty"`
	Accept    bool   `json:"accept,omitempty"`
}

type roomClosed struct {
	Type string         `json:"type"`
	Room model.RoomCode `json:"room"`
}
