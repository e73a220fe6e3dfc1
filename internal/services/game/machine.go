package game

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/services/words"
)

// Observer receives a snapshot after every change to the machine
type Observer func(snapshot model.GameSnapshot)

// Machine is the turn/score state machine for one game.
// It is either idle or playing; all mutations while idle fail with ErrNotPlaying.
type Machine struct {
	words  words.Source
	logger *slog.Logger

	mu           sync.Mutex
	playing      bool
	settings     model.GameSettings
	participants []model.Participant
	state        model.GameState
	timeLeft     int

	observersMu sync.RWMutex
	observers   []Observer
}

// NewMachine creates an idle Machine drawing words from the given source
func NewMachine(source words.Source, logger *slog.Logger) *Machine {
	return &Machine{
		words:  source,
		logger: logger.With(slog.String("component", "game")),
	}
}

// OnChange registers an observer. Observers run outside the machine lock,
// on whichever goroutine made the change.
func (m *Machine) OnChange(observer Observer) {
	m.observersMu.Lock()
	defer m.observersMu.Unlock()
	m.observers = append(m.observers, observer)
}

// Start begins a game. Presenter 0 is the first participant
// and every team in the settings starts on zero.
func (m *Machine) Start(settings model.GameSettings, participants []model.Participant) (model.GameSnapshot, error) {
	if err := settings.Validate(); err != nil {
		return model.GameSnapshot{}, err
	}
	if len(participants) < 2 {
		return model.GameSnapshot{}, model.ErrInsufficientPlayers
	}
	teams, err := model.TeamsFor(settings.NumTeams)
	if err != nil {
		return model.GameSnapshot{}, err
	}
	for _, p := range participants {
		if team, ok := model.FindTeamFor(settings.NumTeams, p.Team); !ok || team.Name != p.Team {
			return model.GameSnapshot{}, fmt.Errorf("%w: participant %q plays for %q", model.ErrUnknownTeam, p.Name, p.Team)
		}
	}

	m.mu.Lock()
	if m.playing {
		m.mu.Unlock()
		return model.GameSnapshot{}, model.ErrGameInProgress
	}

	word, err := m.words.Random(settings.Difficulty)
	if err != nil {
		m.mu.Unlock()
		return model.GameSnapshot{}, err
	}

	scores := make(map[string]int, len(teams))
	for _, team := range teams {
		scores[team.Name] = 0
	}

	m.playing = true
	m.settings = settings
	m.participants = append([]model.Participant(nil), participants...)
	m.state = model.GameState{
		CurrentWord:  word,
		PresenterIdx: 0,
		TeamScores:   scores,
		WordCount:    1,
	}
	m.timeLeft = settings.TimerSeconds
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("game started",
		slog.Int("participants", len(participants)),
		slog.String("difficulty", string(settings.Difficulty)),
		slog.Int("timer", settings.TimerSeconds),
	)

	m.notify(snapshot)
	return snapshot, nil
}

// AdvanceRound draws a new word, passes the turn to the next presenter
// and resets the countdown
func (m *Machine) AdvanceRound() (model.GameSnapshot, error) {
	return m.mutate(func() error { return m.advanceLocked() })
}

// MarkCorrect scores a point for the presenter's team and advances
func (m *Machine) MarkCorrect() (model.GameSnapshot, error) {
	return m.mutate(func() error {
		m.state.TeamScores[m.presenterLocked().Team]++
		return m.advanceLocked()
	})
}

// MarkFoul takes a point from the presenter's team, never below zero, and advances
func (m *Machine) MarkFoul() (model.GameSnapshot, error) {
	return m.mutate(func() error {
		team := m.presenterLocked().Team
		if m.state.TeamScores[team] > 0 {
			m.state.TeamScores[team]--
		}
		return m.advanceLocked()
	})
}

// MarkSkip advances without changing any score
func (m *Machine) MarkSkip() (model.GameSnapshot, error) {
	return m.AdvanceRound()
}

// Tick counts the round down by one second. When time runs out the round
// advances exactly once and the countdown restarts. A no-op while idle.
func (m *Machine) Tick() model.GameSnapshot {
	snapshot, err := m.mutate(func() error {
		if m.timeLeft <= 1 {
			return m.advanceLocked()
		}
		m.timeLeft--
		return nil
	})
	if err != nil {
		return m.Snapshot()
	}
	return snapshot
}

// Stop ends the game and discards its state
func (m *Machine) Stop() model.GameSnapshot {
	m.mu.Lock()
	wasPlaying := m.playing
	m.playing = false
	m.participants = nil
	m.state = model.GameState{}
	m.timeLeft = 0
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if wasPlaying {
		m.logger.Info("game stopped")
		m.notify(snapshot)
	}
	return snapshot
}

// Playing reports whether a game is in play
func (m *Machine) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Snapshot returns a copy of the current state
func (m *Machine) Snapshot() model.GameSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) mutate(fn func() error) (model.GameSnapshot, error) {
	m.mu.Lock()
	if !m.playing {
		m.mu.Unlock()
		return model.GameSnapshot{}, model.ErrNotPlaying
	}
	if err := fn(); err != nil {
		m.mu.Unlock()
		return model.GameSnapshot{}, err
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot)
	return snapshot, nil
}

func (m *Machine) advanceLocked() error {
	word, err := m.words.Random(m.settings.Difficulty)
	if err != nil {
		return err
	}
	m.state.CurrentWord = word
	m.state.PresenterIdx = (m.state.PresenterIdx + 1) % len(m.participants)
	m.state.WordCount++
	m.timeLeft = m.settings.TimerSeconds
	return nil
}

func (m *Machine) presenterLocked() model.Participant {
	return m.participants[m.state.PresenterIdx]
}

func (m *Machine) snapshotLocked() model.GameSnapshot {
	snapshot := model.GameSnapshot{
		Playing:  m.playing,
		Settings: m.settings,
		State:    m.state.Clone(),
		TimeLeft: m.timeLeft,
	}
	if m.playing {
		snapshot.Presenter = m.presenterLocked()
	}
	return snapshot
}

func (m *Machine) notify(snapshot model.GameSnapshot) {
	m.observersMu.RLock()
	observers := append([]Observer(nil), m.observers...)
	m.observersMu.RUnlock()

	for _, observer := range observers {
		observer(snapshot)
	}
}
