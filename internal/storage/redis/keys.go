package redis

import (
	"fmt"

	"github.com/mcoot/aliasgame/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "alias"

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// playersKey returns the Redis key for the LIST of players in a room, oldest first
func playersKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s:players", keyPrefix, code)
}
