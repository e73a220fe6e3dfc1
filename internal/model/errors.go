package model

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of these,
// so callers decide how to surface a failure with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrBackend    = errors.New("backend error")
)

var (
	// Validation errors
	ErrInvalidSettings     = fmt.Errorf("%w: invalid settings", ErrValidation)
	ErrMissingName         = fmt.Errorf("%w: enter a name", ErrValidation)
	ErrMissingTeam         = fmt.Errorf("%w: choose a team", ErrValidation)
	ErrUnknownTeam         = fmt.Errorf("%w: unknown team", ErrValidation)
	ErrInsufficientPlayers = fmt.Errorf("%w: at least 2 players are needed", ErrValidation)
	ErrInvalidCorpus       = fmt.Errorf("%w: invalid word corpus", ErrValidation)

	// Lookup errors
	ErrRoomNotFound = fmt.Errorf("%w: room code does not exist", ErrNotFound)

	// Storage errors
	ErrRoomCodeTaken = errors.New("room code is already in use")
	ErrInvalidStatus = errors.New("invalid room status transition")

	// Game errors
	ErrGameInProgress = errors.New("game is in progress")
	ErrNotPlaying     = errors.New("no round in progress")

	// Screen errors
	ErrInvalidTransition = errors.New("invalid screen transition")
	ErrOnlineDisabled    = errors.New("online mode is not configured")
)

// BackendError wraps a store failure so it reports as ErrBackend
func BackendError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrBackend, err)
}
