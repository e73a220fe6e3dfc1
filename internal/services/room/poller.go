package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/aliasgame/internal/dependencies/clock"
	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/services/interval"
)

// PollPeriod is how often the lobby roster is refreshed
const PollPeriod = time.Second

// ErrStale is returned by Refresh when the poller moved on while the fetch was in flight
var ErrStale = errors.New("roster response is stale")

// RosterSource is what the poller reads from
type RosterSource interface {
	FetchRoster(ctx context.Context, code model.RoomCode) ([]model.Player, error)
	FetchRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
}

// UpdateFunc receives each fresh roster. ctx is cancelled when the poller stops,
// so a blocking handler should select on it.
type UpdateFunc func(ctx context.Context, update model.RosterUpdate)

// RosterPoller keeps a room's roster fresh while a lobby is open
type RosterPoller struct {
	source   RosterSource
	runner   *interval.Runner
	logger   *slog.Logger
	onUpdate UpdateFunc

	mu         sync.Mutex
	generation uint64
	active     bool
	code       model.RoomCode
	roster     []model.Player
	status     model.RoomStatus
}

// NewRosterPoller creates a stopped poller. onUpdate may be nil.
func NewRosterPoller(source RosterSource, clk clock.Clock, logger *slog.Logger, onUpdate UpdateFunc) *RosterPoller {
	return &RosterPoller{
		source:   source,
		runner:   interval.New(clk, PollPeriod),
		logger:   logger.With(slog.String("component", "roster_poller")),
		onUpdate: onUpdate,
	}
}

// Start polls the room once per period. Starting again switches rooms;
// responses still in flight for the previous room are discarded.
func (p *RosterPoller) Start(ctx context.Context, code model.RoomCode) {
	p.runner.Stop()

	p.mu.Lock()
	p.generation++
	p.active = true
	p.code = code
	p.roster = nil
	p.status = model.RoomStatusLobby
	p.mu.Unlock()

	p.runner.Start(ctx, p.poll)
	p.logger.Debug("polling started", slog.String("room_code", string(code)))
}

// Stop halts polling and drops the cached roster
func (p *RosterPoller) Stop() {
	p.mu.Lock()
	wasActive := p.active
	p.generation++
	p.active = false
	p.roster = nil
	p.mu.Unlock()

	p.runner.Stop()
	if wasActive {
		p.logger.Debug("polling stopped")
	}
}

// Refresh fetches the roster now and returns it without calling onUpdate.
// Returns ErrStale if the poller was stopped or restarted meanwhile.
func (p *RosterPoller) Refresh(ctx context.Context) (model.RosterUpdate, error) {
	gen, code, ok := p.current()
	if !ok {
		return model.RosterUpdate{}, ErrStale
	}
	return p.fetch(ctx, gen, code)
}

// Roster returns the last confirmed roster for the active room
func (p *RosterPoller) Roster() []model.Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Player(nil), p.roster...)
}

// Status returns the room status seen by the last successful poll
func (p *RosterPoller) Status() model.RoomStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Running reports whether the poller has an active room
func (p *RosterPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *RosterPoller) poll(ctx context.Context) {
	gen, code, ok := p.current()
	if !ok {
		return
	}

	update, err := p.fetch(ctx, gen, code)
	if err != nil {
		if !errors.Is(err, ErrStale) && ctx.Err() == nil {
			p.logger.Warn("roster poll failed",
				slog.String("room_code", string(code)),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	if p.onUpdate != nil {
		p.onUpdate(ctx, update)
	}
}

func (p *RosterPoller) current() (uint64, model.RoomCode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation, p.code, p.active
}

// fetch reads players then status. The cached roster only changes
// when the generation is still current, and only as a whole.
func (p *RosterPoller) fetch(ctx context.Context, gen uint64, code model.RoomCode) (model.RosterUpdate, error) {
	players, err := p.source.FetchRoster(ctx, code)
	if err != nil {
		return model.RosterUpdate{}, err
	}
	room, err := p.source.FetchRoom(ctx, code)
	if err != nil {
		return model.RosterUpdate{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation || !p.active {
		return model.RosterUpdate{}, ErrStale
	}
	p.roster = players
	p.status = room.Status

	return model.RosterUpdate{
		RoomCode: code,
		Players:  append([]model.Player(nil), players...),
		Status:   room.Status,
	}, nil
}
