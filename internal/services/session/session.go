package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/aliasgame/internal/dependencies/clock"
	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/services/game"
	"github.com/mcoot/aliasgame/internal/services/room"
	"github.com/mcoot/aliasgame/internal/services/words"
)

// ErrSettingsLocked is returned when settings are changed after a room or game started
var ErrSettingsLocked = errors.New("settings cannot change on this screen")

// Config holds what a Session is built from. Rooms is nil when online play is not configured.
type Config struct {
	Words  words.Source
	Rooms  *room.Service
	Clock  clock.Clock
	Logger *slog.Logger
}

// View is a copy of everything a client renders
type View struct {
	Screen        model.Screen
	Mode          model.Mode
	OnlineEnabled bool
	Settings      model.GameSettings
	Room          *model.Room
	Roster        []model.Player
	Game          model.GameSnapshot
	Banner        string
}

// Session is the screen controller for one client. Actions are serialized:
// a second call waits for the first to finish, backend round trips included.
type Session struct {
	rooms     *room.Service
	machine   *game.Machine
	countdown *game.Countdown
	poller    *room.RosterPoller
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	rosterUpdates chan model.RosterUpdate
	gameUpdates   chan model.GameSnapshot

	mu       sync.Mutex
	screen   model.Screen
	mode     model.Mode
	settings model.GameSettings
	room     *model.Room
	roster   []model.Player
	banner   string
}

// New creates a Session on the home screen with default settings
func New(cfg Config) *Session {
	logger := cfg.Logger.With(slog.String("component", "session"))
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		rooms:         cfg.Rooms,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		rosterUpdates: make(chan model.RosterUpdate),
		gameUpdates:   make(chan model.GameSnapshot, 1),
		screen:        model.ScreenHome,
		settings:      model.DefaultGameSettings(),
	}

	s.machine = game.NewMachine(cfg.Words, cfg.Logger)
	s.machine.OnChange(s.offerGame)
	s.countdown = game.NewCountdown(s.machine, cfg.Clock)

	var source room.RosterSource = offlineSource{}
	if cfg.Rooms != nil {
		source = cfg.Rooms
	}
	s.poller = room.NewRosterPoller(source, cfg.Clock, cfg.Logger, s.offerRoster)

	return s
}

// RosterUpdates delivers each polled roster. Pass them to HandleRosterUpdate.
func (s *Session) RosterUpdates() <-chan model.RosterUpdate {
	return s.rosterUpdates
}

// GameUpdates delivers the latest game snapshot after every change.
// Only the newest snapshot is kept if the reader falls behind.
func (s *Session) GameUpdates() <-chan model.GameSnapshot {
	return s.gameUpdates
}

// OnlineEnabled reports whether a room backend is configured
func (s *Session) OnlineEnabled() bool {
	return s.rooms != nil
}

// View returns a copy of the session state
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Screen:        s.screen,
		Mode:          s.mode,
		OnlineEnabled: s.rooms != nil,
		Settings:      s.settings,
		Roster:        append([]model.Player(nil), s.roster...),
		Game:          s.machine.Snapshot(),
		Banner:        s.banner,
	}
	if s.room != nil {
		r := *s.room
		v.Room = &r
	}
	return v
}

// Screen returns the current screen
func (s *Session) Screen() model.Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Banner returns the last user-visible error, empty after a successful action
func (s *Session) Banner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

// SetSettings replaces the game settings. Only allowed before a room or game exists.
func (s *Session) SetSettings(settings model.GameSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != model.ScreenHome && s.screen != model.ScreenOnline {
		return ErrSettingsLocked
	}
	if err := settings.Validate(); err != nil {
		return s.fail(err)
	}
	s.settings = settings
	return s.succeed()
}

// GoOnline opens the create/join screen
func (s *Session) GoOnline() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rooms == nil {
		return model.ErrOnlineDisabled
	}
	if err := s.transition(model.ScreenOnline); err != nil {
		return err
	}
	return s.succeed()
}

// StartLocal starts a single-device game with one participant per team
func (s *Session) StartLocal() (model.GameSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTransition(model.ScreenPlaying); err != nil {
		return model.GameSnapshot{}, err
	}
	teams, err := model.TeamsFor(s.settings.NumTeams)
	if err != nil {
		return model.GameSnapshot{}, s.fail(err)
	}
	snapshot, err := s.startGame(s.settings, model.TeamParticipants(teams))
	if err != nil {
		return model.GameSnapshot{}, err
	}
	s.mode = model.ModeLocal
	return snapshot, s.succeed()
}

// CreateRoom creates a room with the current settings and opens its lobby
func (s *Session) CreateRoom(ctx context.Context) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTransition(model.ScreenLobby); err != nil {
		return nil, err
	}
	created, err := s.rooms.CreateRoom(ctx, s.settings)
	if err != nil {
		return nil, s.fail(err)
	}
	s.room = created
	if err := s.transition(model.ScreenLobby); err != nil {
		return nil, err
	}
	r := *created
	return &r, s.succeed()
}

// JoinRoom opens the lobby of an existing room. On failure the screen
// and the current room are left as they were.
func (s *Session) JoinRoom(ctx context.Context, code string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTransition(model.ScreenLobby); err != nil {
		return nil, err
	}
	joined, err := s.rooms.JoinRoom(ctx, model.RoomCode(strings.TrimSpace(code)))
	if err != nil {
		return nil, s.fail(err)
	}
	s.room = joined
	if err := s.transition(model.ScreenLobby); err != nil {
		return nil, err
	}
	r := *joined
	return &r, s.succeed()
}

// SubmitPlayer adds a player to the open room and refreshes the roster at once
func (s *Session) SubmitPlayer(ctx context.Context, name, team string) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != model.ScreenLobby {
		return nil, model.ErrInvalidTransition
	}
	player, err := s.rooms.SubmitPlayer(ctx, s.room, name, team)
	if err != nil {
		return nil, s.fail(err)
	}

	update, err := s.poller.Refresh(ctx)
	switch {
	case err == nil:
		s.applyRoster(update)
	case errors.Is(err, room.ErrStale):
	default:
		s.logger.Warn("roster refresh after join failed", slog.String("error", err.Error()))
	}
	return player, s.succeed()
}

// StartOnline marks the room as playing and starts a game over the joined players
func (s *Session) StartOnline(ctx context.Context) (model.GameSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != model.ScreenLobby {
		return model.GameSnapshot{}, model.ErrInvalidTransition
	}
	if err := s.rooms.StartGame(ctx, s.room.Code, s.roster); err != nil {
		return model.GameSnapshot{}, s.fail(err)
	}
	s.room.Status = model.RoomStatusPlaying
	snapshot, err := s.startGame(s.room.Settings, model.PlayerParticipants(s.roster))
	if err != nil {
		return model.GameSnapshot{}, err
	}
	return snapshot, s.succeed()
}

// HandleRosterUpdate applies a polled roster. Updates for another room or
// screen are dropped. When the room has been started by another member,
// the session follows it into the game.
func (s *Session) HandleRosterUpdate(update model.RosterUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != model.ScreenLobby || s.room == nil || update.RoomCode != s.room.Code {
		return
	}
	s.applyRoster(update)
}

// MarkCorrect scores for the presenter's team
func (s *Session) MarkCorrect() (model.GameSnapshot, error) {
	return s.play(s.machine.MarkCorrect)
}

// MarkSkip moves to the next word without scoring
func (s *Session) MarkSkip() (model.GameSnapshot, error) {
	return s.play(s.machine.MarkSkip)
}

// MarkFoul costs the presenter's team a point
func (s *Session) MarkFoul() (model.GameSnapshot, error) {
	return s.play(s.machine.MarkFoul)
}

// EndGame stops the game and returns the final snapshot
func (s *Session) EndGame() (model.GameSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != model.ScreenPlaying {
		return model.GameSnapshot{}, model.ErrNotPlaying
	}
	final := s.machine.Snapshot()
	if err := s.transition(model.ScreenHome); err != nil {
		return model.GameSnapshot{}, err
	}
	return final, s.succeed()
}

// Home returns to mode selection from any screen
func (s *Session) Home() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen == model.ScreenHome {
		return s.succeed()
	}
	if err := s.transition(model.ScreenHome); err != nil {
		return err
	}
	return s.succeed()
}

// Close stops every background task the session owns
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	s.exit(s.screen)
}

func (s *Session) play(action func() (model.GameSnapshot, error)) (model.GameSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != model.ScreenPlaying {
		return model.GameSnapshot{}, model.ErrNotPlaying
	}
	snapshot, err := action()
	if err != nil {
		return model.GameSnapshot{}, s.fail(err)
	}
	return snapshot, s.succeed()
}

// startGame starts the machine and moves to the playing screen.
// Must be called with s.mu held.
func (s *Session) startGame(settings model.GameSettings, participants []model.Participant) (model.GameSnapshot, error) {
	snapshot, err := s.machine.Start(settings, participants)
	if err != nil {
		return model.GameSnapshot{}, s.fail(err)
	}
	if err := s.transition(model.ScreenPlaying); err != nil {
		s.machine.Stop()
		return model.GameSnapshot{}, err
	}
	return snapshot, nil
}

// applyRoster stores a roster and follows the room into play once it has started.
// Must be called with s.mu held.
func (s *Session) applyRoster(update model.RosterUpdate) {
	s.roster = update.Players
	if update.Status == model.RoomStatusPlaying {
		s.followRoom()
	}
}

// followRoom joins a game another member started. Must be called with s.mu held.
func (s *Session) followRoom() {
	s.room.Status = model.RoomStatusPlaying
	if _, err := s.startGame(s.room.Settings, model.PlayerParticipants(s.roster)); err != nil {
		s.logger.Warn("could not follow room into game",
			slog.String("room_code", string(s.room.Code)),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.Info("followed room into game", slog.String("room_code", string(s.room.Code)))
}

// fail records user-facing errors in the banner and returns err
func (s *Session) fail(err error) error {
	if errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrBackend) {
		s.banner = err.Error()
	}
	return err
}

func (s *Session) succeed() error {
	s.banner = ""
	return nil
}

func (s *Session) offerRoster(ctx context.Context, update model.RosterUpdate) {
	select {
	case s.rosterUpdates <- update:
	case <-ctx.Done():
	}
}

// offerGame keeps only the newest snapshot in the channel
func (s *Session) offerGame(snapshot model.GameSnapshot) {
	for {
		select {
		case s.gameUpdates <- snapshot:
			return
		default:
		}
		select {
		case <-s.gameUpdates:
		default:
		}
	}
}

// offlineSource backs the poller when no room service exists; the lobby is unreachable then
type offlineSource struct{}

func (offlineSource) FetchRoster(context.Context, model.RoomCode) ([]model.Player, error) {
	return nil, model.ErrOnlineDisabled
}

func (offlineSource) FetchRoom(context.Context, model.RoomCode) (*model.Room, error) {
	return nil, model.ErrOnlineDisabled
}
