package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms   map[model.RoomCode]*model.Room
	players map[model.RoomCode][]model.Player // In join order
	now     func() time.Time
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:   make(map[model.RoomCode]*model.Room),
		players: make(map[model.RoomCode][]model.Player),
		now:     time.Now,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) InsertRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.Code]; ok {
		return model.ErrRoomCodeTaken
	}
	stored := *room
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	s.rooms[room.Code] = &stored
	return nil
}

func (s *Storage) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	result := *room
	return &result, nil
}

func (s *Storage) UpdateRoomStatus(ctx context.Context, code model.RoomCode, status model.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		return model.ErrRoomNotFound
	}
	if !room.Status.CanTransitionTo(status) {
		return model.ErrInvalidStatus
	}
	room.Status = status
	return nil
}

// Player operations

func (s *Storage) InsertPlayer(ctx context.Context, player model.Player) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[player.RoomCode]; !ok {
		return nil, model.ErrRoomNotFound
	}
	player.ID = model.PlayerID(uuid.NewString())
	player.JoinedAt = s.now()
	s.players[player.RoomCode] = append(s.players[player.RoomCode], player)
	return &player, nil
}

func (s *Storage) ListPlayersByRoom(ctx context.Context, code model.RoomCode) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := s.players[code]
	result := make([]model.Player, len(players))
	copy(result, players)
	return result, nil
}

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}
