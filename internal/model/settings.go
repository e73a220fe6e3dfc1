package model

import (
	"fmt"
	"slices"
)

// Difficulty is a named bucket of the word corpus
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties returns all difficulty tiers in ascending order
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// IsValid reports whether d is a known tier
func (d Difficulty) IsValid() bool {
	return slices.Contains(Difficulties(), d)
}

// TimerOptions are the round lengths a game may be configured with, in seconds
var TimerOptions = []int{30, 45, 60, 90, 120}

// GameSettings is fixed once a game starts
type GameSettings struct {
	TimerSeconds int        `json:"timer"`
	Difficulty   Difficulty `json:"difficulty"`
	NumTeams     int        `json:"num_teams"`
	TargetScore  int        `json:"target_score"` // Informational only, never checked by scoring
}

// DefaultGameSettings returns the settings used when nothing is configured
func DefaultGameSettings() GameSettings {
	return GameSettings{
		TimerSeconds: 60,
		Difficulty:   DifficultyEasy,
		NumTeams:     2,
		TargetScore:  30,
	}
}

// Validate checks every field against its allowed values
func (s GameSettings) Validate() error {
	if !slices.Contains(TimerOptions, s.TimerSeconds) {
		return fmt.Errorf("%w: timer must be one of %v seconds, got %d", ErrInvalidSettings, TimerOptions, s.TimerSeconds)
	}
	if !s.Difficulty.IsValid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidSettings, s.Difficulty)
	}
	if s.NumTeams < MinTeams || s.NumTeams > MaxTeams {
		return fmt.Errorf("%w: team count must be between %d and %d, got %d", ErrInvalidSettings, MinTeams, MaxTeams, s.NumTeams)
	}
	if s.TargetScore < 0 {
		return fmt.Errorf("%w: target score cannot be negative", ErrInvalidSettings)
	}
	return nil
}
