// Package truco implements the raise negotiation that escalates a round's value.
package truco

import (
	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/scoring"
)

// Outcome describes the effect of a response
type Outcome struct {
	Refused bool
	Winner  model.Team // asking team, set when refused
	Points  int
}

var tiers = []struct {
	value int
	state model.TrucoState
}{
	{3, model.TrucoPending},
	{6, model.TrucoRaisedTo6},
	{9, model.TrucoRaisedTo9},
	{12, model.TrucoRaisedTo12},
}

// nextTier returns the value and state that follow the current round value
func nextTier(value int) (int, model.TrucoState, bool) {
	for _, t := range tiers {
		if t.value > value {
			return t.value, t.state, true
		}
	}
	return value, "", false
}

// Call raises the round value on behalf of the team seated at seat.
//
// With nothing outstanding the caller's team must hold the turn and must not
// be the team whose last raise was accepted. While a raise is outstanding only
// the other team may raise again, regardless of turn.
func Call(room *model.Room, seat int) error {
	if !room.InProgress() {
		return model.ErrRoundNotInProgress
	}
	if room.Resolving {
		return model.ErrHandResolving
	}
	if room.HandIndex <= 1 {
		return model.ErrTrucoNotAllowed
	}

	team := model.TeamOf(seat)
	if room.TrucoState == model.TrucoNone {
		if room.CurrentTeam() != team {
			return model.ErrNotPlayerTurn
		}
	}
	if room.TrucoAsker == team {
		return model.ErrTrucoNotAllowed
	}

	value, state, ok := nextTier(room.RoundValue)
	if !ok {
		return model.ErrTrucoMaxed
	}

	room.TrucoPrevValue = room.RoundValue
	room.RoundValue = value
	room.TrucoState = state
	room.TrucoAsker = team
	return nil
}

// Respond answers the outstanding raise on behalf of the team seated at seat.
// Accepting keeps the raised value. Refusing hands the round to the asking
// team, judged at the value that stood before the refused raise (at least 3)
// and never below a value the refusing side already accepted.
func Respond(room *model.Room, seat int, accept bool) (Outcome, error) {
	if room.TrucoState == model.TrucoNone {
		return Outcome{}, model.ErrNoTrucoPending
	}
	if model.TeamOf(seat) == room.TrucoAsker {
		return Outcome{}, model.ErrTrucoNotAllowed
	}

	if accept {
		room.TrucoState = model.TrucoNone
		room.TrucoAccepted = room.RoundValue
		return Outcome{}, nil
	}

	tier := max(room.TrucoPrevValue, 3)
	outcome := Outcome{
		Refused: true,
		Winner:  room.TrucoAsker,
		Points:  max(scoring.RefusalPoints(tier), room.TrucoAccepted),
	}
	reset(room)
	return outcome, nil
}

// Cancel drops an outstanding raise, returning the round to its base value.
// It reports whether anything was cancelled.
func Cancel(room *model.Room) bool {
	if room.TrucoState == model.TrucoNone {
		return false
	}
	reset(room)
	return true
}

// Pending reports whether a raise awaits a response
func Pending(room *model.Room) bool {
	return room.TrucoState != model.TrucoNone && room.TrucoState != ""
}

func reset(room *model.Room) {
	room.TrucoState = model.TrucoNone
	room.TrucoAsker = model.NoTeam
	room.TrucoPrevValue = 0
	room.TrucoAccepted = 0
	room.RoundValue = model.BaseRoundValue
}
