package model

// EventType identifies a push event sent to room subscribers
type EventType string

const (
	EventRoster EventType = "roster" // Full player list after a join
	EventStatus EventType = "status" // Room status changed
)

// RosterUpdate is delivered every time the lobby roster is refreshed
type RosterUpdate struct {
	RoomCode RoomCode
	Players  []Player
	Status   RoomStatus
}
