package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/trucogame/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) newRoom(code model.RoomCode) *model.Room {
	room := model.NewRoom(code, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	room.Seats[2] = model.Seat{
		Session:   "sess-c",
		Name:      "Carol",
		Connected: true,
		Hand:      []model.CardID{model.CardCopao, model.CardTwo, model.CardQueen},
	}
	room.ArrivalOrder = []int{2}
	room.Started = true
	room.HandIndex = 2
	room.TurnOrder = []int{2, 3, 0, 1}
	room.Table = []model.Play{{Seat: 2, Card: model.CardAce, Hidden: true}}
	room.History = []model.HandResult{{
		Plays:  []model.Play{{Seat: 0, Card: model.CardZap}},
		Winner: model.Team1,
		Seat:   0,
	}}
	room.HandWins = [2]int{1, 0}
	room.FirstHandWinner = model.Team1
	room.RoundValue = 3
	room.TrucoState = model.TrucoPending
	room.TrucoAsker = model.Team1
	room.Score = [2]int{4, 7}
	return room
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := s.newRoom("R1")

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "R1")
	s.Require().NoError(err)
	s.Equal(room.Seats, retrieved.Seats)
	s.Equal(room.Table, retrieved.Table)
	s.Equal(room.History, retrieved.History)
	s.Equal(model.TrucoPending, retrieved.TrucoState)
	s.Equal(model.Team1, retrieved.TrucoAsker)
	s.Equal([2]int{4, 7}, retrieved.Score)
	s.True(room.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestSaveRoomSetsTTL() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("R1")))

	ttl := s.mini.TTL(roomKey("R1"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, s.newRoom("R1"))

	err := s.storage.DeleteRoom(s.ctx, "R1")
	s.Require().NoError(err)

	_, err = s.storage.GetRoom(s.ctx, "R1")
	s.ErrorIs(err, model.ErrRoomNotFound)

	codes, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(codes)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "R1")
	s.Require().NoError(err)
	s.False(exists)

	_ = s.storage.SaveRoom(s.ctx, s.newRoom("R1"))

	exists, err = s.storage.RoomExists(s.ctx, "R1")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestListRoomsPrunesExpired() {
	_ = s.storage.SaveRoom(s.ctx, s.newRoom("R2"))
	_ = s.storage.SaveRoom(s.ctx, s.newRoom("R1"))

	codes, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.RoomCode{"R1", "R2"}, codes)

	s.mini.FastForward(2 * time.Hour)

	codes, err = s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(codes)

	s.False(s.mini.Exists(roomIndexKey()))
}
