package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mcoot/aliasgame/internal/dependencies/clock"
	"github.com/mcoot/aliasgame/internal/dependencies/random"
	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/storage"
)

const (
	// MaxCodeAttempts is how many fresh codes CreateRoom tries before giving up
	MaxCodeAttempts = 10
	// codeSpace is the number of distinct 4-digit codes
	codeSpace = 10000
	// sharedCallTimeout bounds a de-duplicated backend call, which no longer
	// stops when the caller that started it gives up
	sharedCallTimeout = 10 * time.Second
)

// Service manages online rooms and their rosters against a storage backend
type Service struct {
	storage storage.Storage
	random  random.Random
	clock   clock.Clock
	logger  *slog.Logger

	inflight singleflight.Group
}

// New creates a new room Service
func New(
	storage storage.Storage,
	random random.Random,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		random:  random,
		clock:   clock,
		logger:  logger.With(slog.String("component", "room")),
	}
}

// CreateRoom stores a new lobby room with a random 4-digit code.
// A code already in use is retried with a fresh one.
func (s *Service) CreateRoom(ctx context.Context, settings model.GameSettings) (*model.Room, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxCodeAttempts; attempt++ {
		room := &model.Room{
			Code:      model.RoomCode(fmt.Sprintf("%04d", s.random.Intn(codeSpace))),
			Status:    model.RoomStatusLobby,
			Settings:  settings,
			CreatedAt: s.clock.Now(),
		}

		err := s.storage.InsertRoom(ctx, room)
		if err == nil {
			s.logger.Info("room created",
				slog.String("room_code", string(room.Code)),
				slog.Int("attempts", attempt),
			)
			return room, nil
		}
		if !errors.Is(err, model.ErrRoomCodeTaken) {
			s.logger.Error("failed to create room", slog.String("error", err.Error()))
			return nil, backendError(err)
		}
		s.logger.Debug("room code collision", slog.String("room_code", string(room.Code)))
	}
	return nil, model.BackendError(fmt.Errorf("no free room code after %d attempts: %w", MaxCodeAttempts, model.ErrRoomCodeTaken))
}

// JoinRoom looks up an existing room. Malformed codes are reported as not found.
func (s *Service) JoinRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	code = model.RoomCode(strings.TrimSpace(string(code)))
	if !code.IsWellFormed() {
		return nil, model.ErrRoomNotFound
	}

	room, err := s.FetchRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	s.logger.Info("room joined", slog.String("room_code", string(code)))
	return room, nil
}

// FetchRoom returns the room's current record
func (s *Service) FetchRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	v, err := s.shared(ctx, "room:"+string(code), func(ctx context.Context) (any, error) {
		return s.storage.GetRoomByCode(ctx, code)
	})
	if err != nil {
		return nil, backendError(err)
	}
	room := *v.(*model.Room)
	return &room, nil
}

// SubmitPlayer adds a player to a room's roster and returns the stored record.
// Missing names and teams outside the room's team count are rejected before
// the backend is called.
func (s *Service) SubmitPlayer(ctx context.Context, room *model.Room, name, team string) (*model.Player, error) {
	code := room.Code
	name = strings.TrimSpace(name)
	team = strings.TrimSpace(team)
	if name == "" {
		return nil, model.ErrMissingName
	}
	if team == "" {
		return nil, model.ErrMissingTeam
	}
	known, ok := model.FindTeamFor(room.Settings.NumTeams, team)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not playing in room %s", model.ErrUnknownTeam, team, code)
	}

	key := fmt.Sprintf("player:%s:%s:%s", code, name, known.Name)
	v, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		player, err := s.storage.InsertPlayer(ctx, model.Player{
			RoomCode: code,
			Name:     name,
			Team:     known.Name,
			Score:    0,
		})
		if err != nil {
			return nil, backendError(err)
		}
		return player, nil
	})
	if err != nil {
		s.logger.Warn("failed to add player",
			slog.String("room_code", string(code)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	player := *v.(*model.Player)
	s.logger.Info("player added",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(player.ID)),
		slog.String("team", player.Team),
	)
	return &player, nil
}

// FetchRoster lists the room's players in join order
func (s *Service) FetchRoster(ctx context.Context, code model.RoomCode) ([]model.Player, error) {
	v, err := s.shared(ctx, "roster:"+string(code), func(ctx context.Context) (any, error) {
		return s.storage.ListPlayersByRoom(ctx, code)
	})
	if err != nil {
		return nil, backendError(err)
	}
	return append([]model.Player(nil), v.([]model.Player)...), nil
}

// StartGame moves the room to playing. Needs at least 2 players on the roster.
func (s *Service) StartGame(ctx context.Context, code model.RoomCode, roster []model.Player) error {
	if len(roster) < 2 {
		return model.ErrInsufficientPlayers
	}

	_, err := s.shared(ctx, "start:"+string(code), func(ctx context.Context) (any, error) {
		return nil, s.storage.UpdateRoomStatus(ctx, code, model.RoomStatusPlaying)
	})
	if err != nil {
		s.logger.Error("failed to start game",
			slog.String("room_code", string(code)),
			slog.String("error", err.Error()),
		)
		return backendError(err)
	}

	s.logger.Info("game started",
		slog.String("room_code", string(code)),
		slog.Int("players", len(roster)),
	)
	return nil
}

// shared runs fn once for all concurrent callers with the same key.
// fn gets a context detached from any one caller, so a caller that cancels
// only abandons its own wait and the others still get the result.
func (s *Service) shared(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	ch := s.inflight.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return fn(callCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// backendError passes categorized errors through and wraps everything else
func backendError(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrBackend):
		return err
	default:
		return model.BackendError(err)
	}
}
