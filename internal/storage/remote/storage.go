package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcoot/aliasgame/internal/api/apierr"
	"github.com/mcoot/aliasgame/internal/api/middleware"
	"github.com/mcoot/aliasgame/internal/api/request"
	"github.com/mcoot/aliasgame/internal/api/response"
	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/storage"
)

// Storage talks to the alias server's HTTP API
type Storage struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a remote storage client for the server at baseURL
func New(baseURL, apiKey string) *Storage {
	return &Storage{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) InsertRoom(ctx context.Context, room *model.Room) error {
	body := request.CreateRoomRequest{
		Code:     string(room.Code),
		Status:   string(room.Status),
		Settings: &room.Settings,
	}
	return s.do(ctx, http.MethodPost, "/api/v1/rooms", body, nil)
}

func (s *Storage) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	var room response.Room
	if err := s.do(ctx, http.MethodGet, roomPath(code), nil, &room); err != nil {
		return nil, err
	}
	return room.ToModel(), nil
}

func (s *Storage) UpdateRoomStatus(ctx context.Context, code model.RoomCode, status model.RoomStatus) error {
	body := request.UpdateRoomRequest{Status: string(status)}
	return s.do(ctx, http.MethodPatch, roomPath(code), body, nil)
}

// Player operations

func (s *Storage) InsertPlayer(ctx context.Context, player model.Player) (*model.Player, error) {
	body := request.CreatePlayerRequest{
		Name:  player.Name,
		Team:  player.Team,
		Score: player.Score,
	}
	var created response.Player
	if err := s.do(ctx, http.MethodPost, roomPath(player.RoomCode)+"/players", body, &created); err != nil {
		return nil, err
	}
	result := created.ToModel()
	return &result, nil
}

func (s *Storage) ListPlayersByRoom(ctx context.Context, code model.RoomCode) ([]model.Player, error) {
	var list response.PlayerList
	if err := s.do(ctx, http.MethodGet, roomPath(code)+"/players", nil, &list); err != nil {
		return nil, err
	}
	return list.ToModel(), nil
}

// Health checks the server is reachable
func (s *Storage) Health(ctx context.Context) error {
	var health response.Health
	if err := s.do(ctx, http.MethodGet, "/api/v1/health", nil, &health); err != nil {
		return err
	}
	if health.Status != "ok" {
		return fmt.Errorf("server reports status %q", health.Status)
	}
	return nil
}

// Close releases idle connections
func (s *Storage) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func roomPath(code model.RoomCode) string {
	return "/api/v1/rooms/" + url.PathEscape(string(code))
}

// do performs an HTTP request and decodes the JSON response into result
func (s *Storage) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp apierr.ErrorResponse
		_ = json.Unmarshal(respBody, &errResp)
		return apierr.FromResponse(resp.StatusCode, errResp.Error)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
