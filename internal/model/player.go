package model

import "time"

// PlayerID uniquely identifies a player record, assigned by the backend
type PlayerID string

// Player is an online participant persisted by the backend.
// Records are never mutated client-side once created.
type Player struct {
	ID       PlayerID  `json:"id"`
	RoomCode RoomCode  `json:"room_code"`
	Name     string    `json:"name"`
	Team     string    `json:"team"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joined_at"`
}

// Participant is anyone who can take a presenter turn.
// Local games have one participant per team; online games one per player.
type Participant struct {
	ID   string
	Name string
	Team string
}

// TeamParticipants builds the local-mode participant list, one per team
func TeamParticipants(teams []Team) []Participant {
	result := make([]Participant, len(teams))
	for i, t := range teams {
		result[i] = Participant{ID: t.Name, Name: t.Name, Team: t.Name}
	}
	return result
}

// PlayerParticipants builds the online-mode participant list in join order
func PlayerParticipants(players []Player) []Participant {
	result := make([]Participant, len(players))
	for i, p := range players {
		result[i] = Participant{ID: string(p.ID), Name: p.Name, Team: p.Team}
	}
	return result
}
