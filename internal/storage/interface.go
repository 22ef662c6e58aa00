package storage

import (
	"context"

	"github.com/mcoot/trucogame/internal/model"
)

// Storage defines the interface for room persistence.
// Implementations return copies; callers must SaveRoom to publish changes.
type Storage interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	ListRooms(ctx context.Context) ([]model.RoomCode, error)
}
