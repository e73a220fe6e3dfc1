package session

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/aliasgame/internal/model"
)

// transitions lists every allowed screen change
var transitions = map[model.Screen][]model.Screen{
	model.ScreenHome:    {model.ScreenOnline, model.ScreenPlaying},
	model.ScreenOnline:  {model.ScreenLobby, model.ScreenHome},
	model.ScreenLobby:   {model.ScreenPlaying, model.ScreenHome},
	model.ScreenPlaying: {model.ScreenHome},
}

// CanTransition reports whether the screen controller allows from -> to
func CanTransition(from, to model.Screen) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *Session) checkTransition(to model.Screen) error {
	if !CanTransition(s.screen, to) {
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, s.screen, to)
	}
	return nil
}

// transition moves to a new screen, tearing down what the old screen owned.
// Must be called with s.mu held.
func (s *Session) transition(to model.Screen) error {
	if err := s.checkTransition(to); err != nil {
		return err
	}
	from := s.screen
	s.exit(from)
	s.screen = to
	s.enter(to)

	s.logger.Debug("screen changed",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	return nil
}

func (s *Session) exit(screen model.Screen) {
	switch screen {
	case model.ScreenHome:
	case model.ScreenOnline:
	case model.ScreenLobby:
		s.poller.Stop()
	case model.ScreenPlaying:
		s.countdown.Stop()
		s.machine.Stop()
	}
}

func (s *Session) enter(screen model.Screen) {
	switch screen {
	case model.ScreenHome:
		s.mode = ""
		s.room = nil
		s.roster = nil
	case model.ScreenOnline:
		s.mode = model.ModeOnline
	case model.ScreenLobby:
		s.roster = nil
		s.poller.Start(s.ctx, s.room.Code)
	case model.ScreenPlaying:
		s.countdown.Start(s.ctx)
	}
}
