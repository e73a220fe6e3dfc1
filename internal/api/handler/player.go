package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/aliasgame/internal/api/request"
	"github.com/mcoot/aliasgame/internal/api/response"
	"github.com/mcoot/aliasgame/internal/model"
)

// AddPlayer handles POST /api/v1/rooms/{code}/players
func (h *RoomHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Team = strings.TrimSpace(req.Team)
	if req.Name == "" {
		WriteError(w, model.ErrMissingName)
		return
	}
	if req.Team == "" {
		WriteError(w, model.ErrMissingTeam)
		return
	}

	room, err := h.storage.GetRoomByCode(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	team, ok := model.FindTeamFor(room.Settings.NumTeams, req.Team)
	if !ok {
		WriteError(w, model.ErrUnknownTeam)
		return
	}

	player, err := h.storage.InsertPlayer(r.Context(), model.Player{
		RoomCode: code,
		Name:     req.Name,
		Team:     team.Name,
		Score:    req.Score,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcastRoster(r, code)
	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// ListPlayers handles GET /api/v1/rooms/{code}/players
func (h *RoomHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	players, err := h.storage.ListPlayersByRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerListFromModel(players))
}

func (h *RoomHandler) broadcastRoster(r *http.Request, code model.RoomCode) {
	if h.broadcaster == nil || h.hubManager.GetHub(code) == nil {
		return
	}
	players, err := h.storage.ListPlayersByRoom(r.Context(), code)
	if err != nil {
		h.logger.Warn("failed to load roster for broadcast",
			slog.String("room_code", string(code)),
			slog.String("error", err.Error()))
		return
	}
	h.broadcaster.BroadcastRoster(code, players)
}
