package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/storage"
)

// Postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Storage is a Postgres-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to Postgres, applies migrations and returns the store
func New(ctx context.Context, url string) (*Storage, error) {
	if err := Migrate(ctx, url); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Storage{pool: pool}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close releases the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Room operations

func (s *Storage) InsertRoom(ctx context.Context, room *model.Room) error {
	settings, err := json.Marshal(room.Settings)
	if err != nil {
		return err
	}
	createdAt := room.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.pool.Exec(ctx,
		"INSERT INTO rooms(code, status, settings, created_at) VALUES($1, $2, $3, $4)",
		string(room.Code), string(room.Status), settings, createdAt,
	)
	if isCode(err, uniqueViolation) {
		return model.ErrRoomCodeTaken
	}
	return err
}

func (s *Storage) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT code, status, settings, created_at FROM rooms WHERE code = $1",
		string(code),
	)
	return scanRoom(row)
}

func (s *Storage) UpdateRoomStatus(ctx context.Context, code model.RoomCode, status model.RoomStatus) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx, "SELECT status FROM rooms WHERE code = $1 FOR UPDATE", string(code)).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		if !model.RoomStatus(current).CanTransitionTo(status) {
			return model.ErrInvalidStatus
		}
		_, err = tx.Exec(ctx, "UPDATE rooms SET status = $2 WHERE code = $1", string(code), string(status))
		return err
	})
}

// Player operations

func (s *Storage) InsertPlayer(ctx context.Context, player model.Player) (*model.Player, error) {
	row := s.pool.QueryRow(ctx,
		"INSERT INTO players(room_code, name, team, score) VALUES($1, $2, $3, $4) RETURNING id::text, joined_at",
		string(player.RoomCode), player.Name, player.Team, player.Score,
	)

	var id string
	if err := row.Scan(&id, &player.JoinedAt); err != nil {
		if isCode(err, foreignKeyViolation) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}
	player.ID = model.PlayerID(id)
	return &player, nil
}

func (s *Storage) ListPlayersByRoom(ctx context.Context, code model.RoomCode) ([]model.Player, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id::text, room_code, name, team, score, joined_at FROM players WHERE room_code = $1 ORDER BY joined_at, id",
		string(code),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		var p model.Player
		var id, roomCode string
		if err := rows.Scan(&id, &roomCode, &p.Name, &p.Team, &p.Score, &p.JoinedAt); err != nil {
			return nil, err
		}
		p.ID = model.PlayerID(id)
		p.RoomCode = model.RoomCode(roomCode)
		players = append(players, p)
	}
	return players, rows.Err()
}

func scanRoom(row pgx.Row) (*model.Room, error) {
	var room model.Room
	var code, status string
	var settings []byte
	if err := row.Scan(&code, &status, &settings, &room.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(settings, &room.Settings); err != nil {
		return nil, err
	}
	room.Code = model.RoomCode(code)
	room.Status = model.RoomStatus(status)
	return &room, nil
}

func isCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
