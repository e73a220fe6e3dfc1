package storage

import (
	"context"

	"github.com/mcoot/aliasgame/internal/model"
)

// Storage is the room/player store the online mode syncs against.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Room operations
	InsertRoom(ctx context.Context, room *model.Room) error // model.ErrRoomCodeTaken on duplicate code
	GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error)
	UpdateRoomStatus(ctx context.Context, code model.RoomCode, status model.RoomStatus) error

	// Player operations
	InsertPlayer(ctx context.Context, player model.Player) (*model.Player, error) // Assigns ID and JoinedAt
	ListPlayersByRoom(ctx context.Context, code model.RoomCode) ([]model.Player, error)

	Close() error
}
