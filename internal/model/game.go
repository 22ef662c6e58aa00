package model

import (
	"fmt"
	"time"
)

// RoomCode identifies a room
type RoomCode string

const (
	SeatCount      = 4
	HandSize       = 3
	MaxHands       = 3
	BaseRoundValue = 1
)

// TrucoState is the position in the raise negotiation
type TrucoState string

const (
	TrucoNone       TrucoState = "none"
	TrucoPending    TrucoState = "pending"
	TrucoRaisedTo6  TrucoState = "raised_to_6"
	TrucoRaisedTo9  TrucoState = "raised_to_9"
	TrucoRaisedTo12 TrucoState = "raised_to_12"
)

// Play is one card put on the table
type Play struct {
	Seat   int
	Card   CardID
	Hidden bool
}

// HandResult records a resolved hand of the round
type HandResult struct {
	Plays  []Play
	Winner Team // NoTeam when tied
	Tie    bool
	Seat   int // winning or representative seat
}

// MatchSummary records a finished match
type MatchSummary struct {
	Winner      Team
	Score       [2]int
	Rounds      int
	CompletedAt time.Time
}

// Room is the aggregate state of one table
type Room struct {
	Code  RoomCode
	Seats [SeatCount]Seat

	// ArrivalOrder lists occupied seats in the order they were taken
	ArrivalOrder []int

	// Round scoped
	TurnOrder       []int
	TurnIndex       int
	RoundLeader     int
	Table           []Play
	History         []HandResult
	HandIndex       int
	HandWins        [2]int
	TiedHands       int
	FirstHandWinner Team
	RoundValue      int
	TrucoState      TrucoState
	TrucoAsker      Team
	TrucoPrevValue  int // round value before the outstanding raise
	TrucoAccepted   int // value last accepted this round
	Started         bool
	RoundOver       bool
	RoundWinner     Team
	RoundPoints     int
	Resolving       bool
	DealRetries     int
	DealCount       int // rounds dealt in this room, voided ones included

	// Match scoped
	Score        [2]int
	MatchWinner  Team
	RoundsPlayed int
	MatchHistory []MatchSummary

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom creates an empty room
func NewRoom(code RoomCode, now time.Time) *Room {
	return &Room{
		Code:       code,
		RoundValue: BaseRoundValue,
		TrucoState: TrucoNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SeatBySession returns the seat index held by the session, or -1
func (r *Room) SeatBySession(session SessionID) int {
	if session == "" {
		return -1
	}
	for i := range r.Seats {
		if r.Seats[i].Session == session {
			return i
		}
	}
	return -1
}

// SeatByName returns the occupied seat with the given display name, or -1
func (r *Room) SeatByName(name string) int {
	for i := range r.Seats {
		if r.Seats[i].Occupied() && r.Seats[i].Name == name {
			return i
		}
	}
	return -1
}

// OccupiedCount returns how many seats have an occupant record
func (r *Room) OccupiedCount() int {
	n := 0
	for i := range r.Seats {
		if r.Seats[i].Occupied() {
			n++
		}
	}
	return n
}

// ConnectedCount returns how many occupied seats are connected
func (r *Room) ConnectedCount() int {
	n := 0
	for i := range r.Seats {
		if r.Seats[i].Occupied() && r.Seats[i].Connected {
			n++
		}
	}
	return n
}

// Empty reports whether every seat is vacant
func (r *Room) Empty() bool {
	return r.OccupiedCount() == 0
}

// InProgress reports whether a round is being played
func (r *Room) InProgress() bool {
	return r.Started && !r.RoundOver
}

// CurrentSeat returns the seat whose turn it is. ok is false when no round
// is in progress or the table is complete.
func (r *Room) CurrentSeat() (seat int, ok bool) {
	if !r.InProgress() || r.TurnIndex < 0 || r.TurnIndex >= len(r.TurnOrder) {
		return -1, false
	}
	return r.TurnOrder[r.TurnIndex], true
}

// CurrentTeam returns the team on turn, or NoTeam
func (r *Room) CurrentTeam() Team {
	seat, ok := r.CurrentSeat()
	if !ok {
		return NoTeam
	}
	return TeamOf(seat)
}

// TableComplete reports whether every seat has played in the current hand
func (r *Room) TableComplete() bool {
	return len(r.Table) >= SeatCount
}

// Validate checks the aggregate invariants
func (r *Room) Validate() error {
	if len(r.Table) > SeatCount {
		return fmt.Errorf("%w: table has %d plays", ErrInvalidState, len(r.Table))
	}
	if r.Started && (r.HandIndex < 1 || r.HandIndex > MaxHands) {
		return fmt.Errorf("%w: hand index %d", ErrInvalidState, r.HandIndex)
	}
	switch r.RoundValue {
	case 1, 3, 6, 9, 12:
	default:
		return fmt.Errorf("%w: round value %d", ErrInvalidState, r.RoundValue)
	}
	for i := range r.Seats {
		if len(r.Seats[i].Hand) > HandSize {
			return fmt.Errorf("%w: seat %d holds %d cards", ErrInvalidState, i, len(r.Seats[i].Hand))
		}
		if !r.Seats[i].Occupied() && r.Seats[i].Connected {
			return fmt.Errorf("%w: vacant seat %d marked connected", ErrInvalidState, i)
		}
	}
	if r.HandWins[0]+r.HandWins[1]+r.TiedHands > MaxHands {
		return fmt.Errorf("%w: more than %d hands in round", ErrInvalidState, MaxHands)
	}
	return nil
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	c := *r
	for i := range c.Seats {
		c.Seats[i].Hand = append([]CardID(nil), r.Seats[i].Hand...)
	}
	c.ArrivalOrder = append([]int(nil), r.ArrivalOrder...)
	c.TurnOrder = append([]int(nil), r.TurnOrder...)
	c.Table = append([]Play(nil), r.Table...)
	c.History = make([]HandResult, len(r.History))
	for i, h := range r.History {
		h.Plays = append([]Play(nil), h.Plays...)
		c.History[i] = h
	}
	c.MatchHistory = append([]MatchSummary(nil), r.MatchHistory...)
	return &c
}
