package response

import (
	"time"

	"github.com/mcoot/aliasgame/internal/model"
)

// Settings represents game settings in API responses
type Settings struct {
	Timer       int    `json:"timer"`
	Difficulty  string `json:"difficulty"`
	NumTeams    int    `json:"num_teams"`
	TargetScore int    `json:"target_score"`
}

// SettingsFromModel converts model.GameSettings
func SettingsFromModel(s model.GameSettings) Settings {
	return Settings{
		Timer:       s.TimerSeconds,
		Difficulty:  string(s.Difficulty),
		NumTeams:    s.NumTeams,
		TargetScore: s.TargetScore,
	}
}

// ToModel converts back to model.GameSettings
func (s Settings) ToModel() model.GameSettings {
	return model.GameSettings{
		TimerSeconds: s.Timer,
		Difficulty:   model.Difficulty(s.Difficulty),
		NumTeams:     s.NumTeams,
		TargetScore:  s.TargetScore,
	}
}

// Room represents a room in API responses
type Room struct {
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomFromModel converts a model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	return Room{
		Code:      string(r.Code),
		Status:    string(r.Status),
		Settings:  SettingsFromModel(r.Settings),
		CreatedAt: r.CreatedAt,
	}
}

// ToModel converts back to model.Room
func (r Room) ToModel() *model.Room {
	return &model.Room{
		Code:      model.RoomCode(r.Code),
		Status:    model.RoomStatus(r.Status),
		Settings:  r.Settings.ToModel(),
		CreatedAt: r.CreatedAt,
	}
}

// Player represents a player in API responses
type Player struct {
	ID       string    `json:"id"`
	RoomCode string    `json:"room_code"`
	Name     string    `json:"name"`
	Team     string    `json:"team"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joined_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:       string(p.ID),
		RoomCode: string(p.RoomCode),
		Name:     p.Name,
		Team:     p.Team,
		Score:    p.Score,
		JoinedAt: p.JoinedAt,
	}
}

// ToModel converts back to model.Player
func (p Player) ToModel() model.Player {
	return model.Player{
		ID:       model.PlayerID(p.ID),
		RoomCode: model.RoomCode(p.RoomCode),
		Name:     p.Name,
		Team:     p.Team,
		Score:    p.Score,
		JoinedAt: p.JoinedAt,
	}
}

// PlayerList is the response for listing a room's players
type PlayerList struct {
	Players []Player `json:"players"`
}

// PlayerListFromModel converts a roster
func PlayerListFromModel(players []model.Player) PlayerList {
	list := PlayerList{Players: make([]Player, 0, len(players))}
	for i := range players {
		list.Players = append(list.Players, PlayerFromModel(&players[i]))
	}
	return list
}

// ToModel converts back to a roster
func (l PlayerList) ToModel() []model.Player {
	players := make([]model.Player, 0, len(l.Players))
	for _, p := range l.Players {
		players = append(players, p.ToModel())
	}
	return players
}

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}
