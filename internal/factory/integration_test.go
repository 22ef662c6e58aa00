package factory

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/auth"
	"github.com/mcoot/trucogame/internal/services/game"
)

type IntegrationSuite struct {
	suite.Suite
	app      *TestApp
	ctx      context.Context
	sessions map[string]*auth.Session
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.sessions = make(map[string]*auth.Session)
}

func (s *IntegrationSuite) join(name string) {
	session := s.app.AuthService.CreateSession("R1", name)
	s.sessions[name] = session

	_, err := s.app.GameController.Join(s.ctx, "R1", session.ID, name)
	s.Require().NoError(err)
}

func (s *IntegrationSuite) play(name string, index int) {
	_, err := s.app.GameController.Play(s.ctx, "R1", s.sessions[name].ID, index, false)
	s.Require().NoError(err, "play by %s", name)
}

func (s *IntegrationSuite) room() *model.Room {
	room, err := s.app.GameController.GetRoom(s.ctx, "R1")
	s.Require().NoError(err)
	return room
}

// Test: a full round with an accepted truco, then the next deal
func (s *IntegrationSuite) TestRoundWithAcceptedTruco() {
	for _, name := range []string{"A", "B", "C", "D"} {
		s.join(name)
	}
	s.True(s.room().Started)

	// Hand 1: the Zap in seat 3 wins
	for _, name := range []string{"A", "B", "C", "D"} {
		s.play(name, 0)
	}
	s.True(s.room().Resolving)
	s.app.MockClock.Advance(game.DefaultConfig().HandDelay)

	room := s.room()
	s.Equal(2, room.HandIndex)
	s.Equal([]int{3, 0, 1, 2}, room.TurnOrder)

	// Seat 3 raises, seat 0 accepts
	_, err := s.app.GameController.CallTruco(s.ctx, "R1", s.sessions["D"].ID)
	s.Require().NoError(err)
	_, err = s.app.GameController.RespondTruco(s.ctx, "R1", s.sessions["A"].ID, true)
	s.Require().NoError(err)
	s.Equal(3, s.room().RoundValue)

	// Hand 2: the Copão takes the second hand and the round
	for _, name := range []string{"D", "A", "B", "C"} {
		s.play(name, 0)
	}
	s.app.MockClock.Advance(game.DefaultConfig().HandDelay)

	room = s.room()
	s.True(room.RoundOver)
	s.Equal(model.Team2, room.RoundWinner)
	s.Equal([2]int{0, 3}, room.Score)

	v, err := s.app.GameController.RequestNewRound(s.ctx, "R1", s.sessions["B"].ID)
	s.Require().NoError(err)
	s.True(v.Started)
	s.Len(v.Hand, model.HandSize)
	s.Equal(2, s.room().DealCount)
	s.Equal([2]int{0, 3}, s.room().Score)
}

// Test: the room closing drops its sessions and SSE hub
func (s *IntegrationSuite) TestRoomCloseInvalidatesSessions() {
	s.join("A")
	s.join("B")
	s.app.HubManager.GetOrCreateHub("R1")

	_, err := s.app.GameController.Leave(s.ctx, "R1", s.sessions["A"].ID)
	s.Require().NoError(err)
	_, err = s.app.AuthService.ValidateSession(s.sessions["B"].Token)
	s.Require().NoError(err)

	destroyed, err := s.app.GameController.Leave(s.ctx, "R1", s.sessions["B"].ID)
	s.Require().NoError(err)
	s.True(destroyed)

	_, err = s.app.AuthService.ValidateSession(s.sessions["B"].Token)
	s.ErrorIs(err, auth.ErrInvalidSession)
	s.Nil(s.app.HubManager.GetHub("R1"))
}

// Test: sweeping an abandoned room
func (s *IntegrationSuite) TestSweepRemovesAbandonedRoom() {
	s.join("A")
	s.Require().NoError(s.app.GameController.Disconnect(s.ctx, "R1", s.sessions["A"].ID))

	removed, err := s.app.GameController.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Empty(removed)

	s.app.MockClock.Advance(game.DefaultConfig().IdleRoomTTL)

	removed, err = s.app.GameController.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.RoomCode{"R1"}, removed)

	_, err = s.app.AuthService.ValidateSession(s.sessions["A"].Token)
	s.ErrorIs(err, auth.ErrInvalidSession)
}

// Test: one maintenance pass sweeps and cleans up
func (s *IntegrationSuite) TestMaintain() {
	s.join("A")
	s.Require().NoError(s.app.GameController.Disconnect(s.ctx, "R1", s.sessions["A"].ID))
	s.app.HubManager.GetOrCreateHub("OTHER")

	s.app.MockClock.Advance(game.DefaultConfig().IdleRoomTTL)
	s.app.Maintain(s.ctx)

	exists, err := s.app.Storage.RoomExists(s.ctx, "R1")
	s.Require().NoError(err)
	s.False(exists)
	s.Nil(s.app.HubManager.GetHub("OTHER"))
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(Config{StorageType: "sqlite"})
	if err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if app.GameController == nil || app.WSManager == nil {
		t.Fatal("expected wired controller and transports")
	}
}

func TestNewShuffleSeedMakesDealsReproducible(t *testing.T) {
	a, err := New(Config{ShuffleSeed: 99})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(Config{ShuffleSeed: 99})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dealA, err := a.DeckService.Deal()
	if err != nil {
		t.Fatalf("Deal: %v", err)
	}
	dealB, err := b.DeckService.Deal()
	if err != nil {
		t.Fatalf("Deal: %v", err)
	}
	if !reflect.DeepEqual(dealA, dealB) {
		t.Fatalf("seeded deals differ: %v vs %v", dealA, dealB)
	}
}
