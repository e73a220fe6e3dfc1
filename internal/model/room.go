package model

import (
	"time"
	"unicode"
)

// RoomCode is the 4-digit identifier players use to join a room
type RoomCode string

// RoomCodeLength is the number of digits in a room code
const RoomCodeLength = 4

// IsWellFormed reports whether the code is exactly four ASCII digits
func (c RoomCode) IsWellFormed() bool {
	if len(c) != RoomCodeLength {
		return false
	}
	for _, r := range c {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// RoomStatus represents where a room is in its lifecycle
type RoomStatus string

const (
	RoomStatusLobby   RoomStatus = "lobby"   // Players are joining
	RoomStatusPlaying RoomStatus = "playing" // A game has been started
)

// IsValid reports whether s is a known status
func (s RoomStatus) IsValid() bool {
	return s == RoomStatusLobby || s == RoomStatusPlaying
}

// CanTransitionTo reports whether the room lifecycle allows moving to next.
// Rooms only ever move forward: lobby -> playing.
func (s RoomStatus) CanTransitionTo(next RoomStatus) bool {
	switch s {
	case RoomStatusLobby:
		return next == RoomStatusLobby || next == RoomStatusPlaying
	case RoomStatusPlaying:
		return next == RoomStatusPlaying
	default:
		return false
	}
}

// Room is an online session container
type Room struct {
	Code      RoomCode     `json:"code"`
	Status    RoomStatus   `json:"status"`
	Settings  GameSettings `json:"settings"`
	CreatedAt time.Time    `json:"created_at"`
}
