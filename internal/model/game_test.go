package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTeamOf(t *testing.T) {
	assert.Equal(t, Team1, TeamOf(0))
	assert.Equal(t, Team2, TeamOf(1))
	assert.Equal(t, Team1, TeamOf(2))
	assert.Equal(t, Team2, TeamOf(3))
	assert.Equal(t, Team2, Team1.Other())
	assert.Equal(t, NoTeam, NoTeam.Other())
	assert.Equal(t, 2, PartnerSeat(0))
	assert.Equal(t, 1, PartnerSeat(3))
}

func TestRoomSeatLookup(t *testing.T) {
	room := NewRoom("R1", time.Now())
	room.Seats[1] = Seat{Session: "s1", Name: "Bob", Connected: true}
	room.Seats[3] = Seat{Session: "s3", Name: "Dan"}

	assert.Equal(t, 1, room.SeatBySession("s1"))
	assert.Equal(t, -1, room.SeatBySession(""))
	assert.Equal(t, 3, room.SeatByName("Dan"))
	assert.Equal(t, -1, room.SeatByName("Eve"))
	assert.Equal(t, 2, room.OccupiedCount())
	assert.Equal(t, 1, room.ConnectedCount())
	assert.False(t, room.Empty())
}

func TestRoomCurrentSeat(t *testing.T) {
	room := NewRoom("R1", time.Now())
	_, ok := room.CurrentSeat()
	assert.False(t, ok)

	room.Started = true
	room.HandIndex = 1
	room.TurnOrder = []int{2, 3, 0, 1}
	room.TurnIndex = 1
	seat, ok := room.CurrentSeat()
	assert.True(t, ok)
	assert.Equal(t, 3, seat)
	assert.Equal(t, Team2, room.CurrentTeam())

	room.TurnIndex = 4
	_, ok = room.CurrentSeat()
	assert.False(t, ok)
}

func TestRoomValidate(t *testing.T) {
	room := NewRoom("R1", time.Now())
	assert.NoError(t, room.Validate())

	room.RoundValue = 4
	assert.ErrorIs(t, room.Validate(), ErrInvalidState)
	room.RoundValue = 3

	room.Table = make([]Play, 5)
	assert.ErrorIs(t, room.Validate(), ErrInvalidState)
	room.Table = nil

	room.Started = true
	room.HandIndex = 4
	assert.ErrorIs(t, room.Validate(), ErrInvalidState)
	room.HandIndex = 2

	room.Seats[0].Connected = true
	assert.ErrorIs(t, room.Validate(), ErrInvalidState)
}
