package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/aliasgame/internal/model"
)

// StatusEvent is the payload of a status event
type StatusEvent struct {
	Code   model.RoomCode   `json:"code"`
	Status model.RoomStatus `json:"status"`
}

// Broadcaster publishes room changes to SSE subscribers as JSON events
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// BroadcastRoster sends the full player list of a room
func (b *Broadcaster) BroadcastRoster(code model.RoomCode, players []model.Player) {
	b.send(code, model.EventRoster, players)
}

// BroadcastStatus sends a room's new status
func (b *Broadcaster) BroadcastStatus(code model.RoomCode, status model.RoomStatus) {
	b.send(code, model.EventStatus, StatusEvent{Code: code, Status: status})
}

func (b *Broadcaster) send(code model.RoomCode, event model.EventType, payload any) {
	hub := b.hubManager.GetHub(code)
	if hub == nil {
		return
	}

	data, err := EncodeEvent(event, payload)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("room_code", string(code)),
			slog.String("event", string(event)),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(data)
}

// EncodeEvent encodes payload as a framed SSE event
func EncodeEvent(event model.EventType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return formatSSEMessage(string(event), string(data)), nil
}
