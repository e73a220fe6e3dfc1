package model

// Screen selects which view the client renders
type Screen string

const (
	ScreenHome    Screen = "home"    // Mode selection
	ScreenOnline  Screen = "online"  // Create or join a room
	ScreenLobby   Screen = "lobby"   // Waiting for players in a room
	ScreenPlaying Screen = "playing" // A game is in progress
)

// Mode distinguishes single-device play from room-backed play
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeOnline Mode = "online"
)
