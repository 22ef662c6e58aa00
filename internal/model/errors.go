package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNameTaken    = errors.New("name is already seated in this room")
	ErrInvalidName  = errors.New("invalid display name")
	ErrSeatNotFound = errors.New("session is not seated in this room")
	ErrInvalidState = errors.New("room state invariant violated")

	// Play errors
	ErrNotPlayerTurn      = errors.New("not this player's turn")
	ErrInvalidCard        = errors.New("invalid card index")
	ErrHiddenNotAllowed   = errors.New("hidden play not allowed in the first hand")
	ErrRoundNotInProgress = errors.New("no round in progress")
	ErrHandResolving      = errors.New("hand is being resolved")
	ErrTrucoPending       = errors.New("a truco call is awaiting a response")

	// Truco errors
	ErrTrucoNotAllowed = errors.New("truco call not allowed")
	ErrNoTrucoPending  = errors.New("no truco call to respond to")
	ErrTrucoMaxed      = errors.New("round value cannot be raised further")

	// Round errors
	ErrRoundInProgress = errors.New("round is still in progress")
	ErrMatchOver       = errors.New("match is over")
	ErrSeatsVacant     = errors.New("not every seat is occupied")

	// Dealing errors
	ErrDeckExhausted = errors.New("not enough cards to deal")
)

// IsRuleViolation reports whether err is an expected client-side rule
// violation rather than an infrastructure failure
func IsRuleViolation(err error) bool {
	for _, target := range []error{
		ErrRoomNotFound, ErrRoomFull, ErrNameTaken, ErrInvalidName, ErrSeatNotFound,
		ErrNotPlayerTurn, ErrInvalidCard, ErrHiddenNotAllowed, ErrRoundNotInProgress,
		ErrHandResolving, ErrTrucoPending, ErrTrucoNotAllowed, ErrNoTrucoPending,
		ErrTrucoMaxed, ErrRoundInProgress, ErrMatchOver, ErrSeatsVacant,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
