package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/aliasgame/internal/api/request"
	"github.com/mcoot/aliasgame/internal/api/response"
	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/sse"
	"github.com/mcoot/aliasgame/internal/storage"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	storage     storage.Storage
	hubManager  *sse.HubManager
	broadcaster *sse.Broadcaster
	logger      *slog.Logger
}

// NewRoomHandler creates a new room handler. hubManager may be nil to disable events.
func NewRoomHandler(storage storage.Storage, hubManager *sse.HubManager, logger *slog.Logger) *RoomHandler {
	var broadcaster *sse.Broadcaster
	if hubManager != nil {
		broadcaster = sse.NewBroadcaster(hubManager, logger)
	}
	return &RoomHandler{
		storage:     storage,
		hubManager:  hubManager,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	room := &model.Room{
		Code:     model.RoomCode(req.Code),
		Status:   model.RoomStatus(req.Status),
		Settings: model.DefaultGameSettings(),
	}
	if room.Status == "" {
		room.Status = model.RoomStatusLobby
	}
	if req.Settings != nil {
		room.Settings = *req.Settings
	}

	if !room.Code.IsWellFormed() {
		WriteError(w, NewInvalidRequestError("Room code must be 4 digits"))
		return
	}
	if !room.Status.IsValid() {
		WriteError(w, NewInvalidRequestError("Unknown room status"))
		return
	}
	if err := room.Settings.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.storage.InsertRoom(r.Context(), room); err != nil {
		WriteError(w, err)
		return
	}

	stored, err := h.storage.GetRoomByCode(r.Context(), room.Code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.RoomFromModel(stored))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	room, err := h.storage.GetRoomByCode(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Update handles PATCH /api/v1/rooms/{code}
func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	status := model.RoomStatus(req.Status)
	if !status.IsValid() {
		WriteError(w, NewInvalidRequestError("Unknown room status"))
		return
	}

	if err := h.storage.UpdateRoomStatus(r.Context(), code, status); err != nil {
		WriteError(w, err)
		return
	}

	room, err := h.storage.GetRoomByCode(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastStatus(code, room.Status)
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Events handles GET /api/v1/rooms/{code}/events
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	if h.hubManager == nil {
		WriteError(w, NewInvalidRequestError("Events are not enabled"))
		return
	}

	if _, err := h.storage.GetRoomByCode(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}

	// Subscribers start from the current roster
	var initial []byte
	players, err := h.storage.ListPlayersByRoom(r.Context(), code)
	if err == nil {
		initial, err = sse.EncodeEvent(model.EventRoster, players)
	}
	if err != nil {
		h.logger.Warn("failed to load initial roster",
			slog.String("room_code", string(code)),
			slog.String("error", err.Error()))
	}

	hub := h.hubManager.GetOrCreateHub(code)
	sse.ServeSSE(w, r, hub, initial)
}
