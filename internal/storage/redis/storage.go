package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/storage"
)

// maxTxRetries bounds optimistic transaction retries on WATCH conflicts
const maxTxRetries = 5

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) InsertRoom(ctx context.Context, room *model.Room) error {
	stored := *room
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	data, err := json.Marshal(&stored)
	if err != nil {
		return err
	}

	// SETNX makes the code unique without a separate existence check
	ok, err := s.client.SetNX(ctx, roomKey(room.Code), data, s.cfg.RoomTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrRoomCodeTaken
	}
	return nil
}

func (s *Storage) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return getRoom(ctx, s.client, code)
}

func (s *Storage) UpdateRoomStatus(ctx context.Context, code model.RoomCode, status model.RoomStatus) error {
	key := roomKey(code)
	return s.withRetry(ctx, func(tx *redis.Tx) error {
		room, err := getRoom(ctx, tx, code)
		if err != nil {
			return err
		}
		if !room.Status.CanTransitionTo(status) {
			return model.ErrInvalidStatus
		}
		room.Status = status

		data, err := json.Marshal(room)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, data, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}, key)
}

// Player operations

func (s *Storage) InsertPlayer(ctx context.Context, player model.Player) (*model.Player, error) {
	player.ID = model.PlayerID(uuid.NewString())
	player.JoinedAt = time.Now()
	data, err := json.Marshal(&player)
	if err != nil {
		return nil, err
	}

	key := playersKey(player.RoomCode)
	err = s.withRetry(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, roomKey(player.RoomCode)).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return model.ErrRoomNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, data)
			if s.cfg.RoomTTL > 0 {
				pipe.Expire(ctx, key, s.cfg.RoomTTL)
			}
			return nil
		})
		return err
	}, roomKey(player.RoomCode))
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) ListPlayersByRoom(ctx context.Context, code model.RoomCode) ([]model.Player, error) {
	values, err := s.client.LRange(ctx, playersKey(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	players := make([]model.Player, 0, len(values))
	for _, v := range values {
		var player model.Player
		if err := json.Unmarshal([]byte(v), &player); err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

// withRetry runs fn in a WATCH transaction, retrying when a watched key changes
func (s *Storage) withRetry(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getRoom(ctx context.Context, c getter, code model.RoomCode) (*model.Room, error) {
	data, err := c.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}
