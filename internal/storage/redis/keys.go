package redis

import (
	"fmt"

	"github.com/mcoot/trucogame/internal/model"
)

// Key prefix for all room data
const keyPrefix = "truco"

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// roomIndexKey returns the Redis key for the SET of known room codes
func roomIndexKey() string {
	return keyPrefix + ":idx:rooms"
}
