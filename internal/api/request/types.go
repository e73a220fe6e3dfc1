package request

import "github.com/mcoot/aliasgame/internal/model"

// CreateRoomRequest is the request body for inserting a room
type CreateRoomRequest struct {
	Code     string              `json:"code"`
	Status   string              `json:"status,omitempty"` // Defaults to lobby
	Settings *model.GameSettings `json:"settings,omitempty"`
}

// UpdateRoomRequest is the request body for changing a room's status
type UpdateRoomRequest struct {
	Status string `json:"status"`
}

// CreatePlayerRequest is the request body for inserting a player
type CreatePlayerRequest struct {
	Name  string `json:"name"`
	Team  string `json:"team"`
	Score int    `json:"score"`
}
