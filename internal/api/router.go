package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/mcoot/aliasgame/internal/api/handler"
	"github.com/mcoot/aliasgame/internal/api/middleware"
	"github.com/mcoot/aliasgame/internal/api/response"
	rootmiddleware "github.com/mcoot/aliasgame/internal/middleware"
	"github.com/mcoot/aliasgame/internal/sse"
	"github.com/mcoot/aliasgame/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Storage    storage.Storage
	HubManager *sse.HubManager // nil disables the events endpoint

	// APIKey, when set, must be sent in the apikey header
	APIKey string

	// CORSOrigins lists allowed browser origins. Empty allows none.
	CORSOrigins []string

	// RateLimit caps room requests per second across all clients. Zero disables it.
	RateLimit float64
	RateBurst int
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Storage, cfg.HubManager, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(rootmiddleware.Logging(cfg.Logger))

	// Health check endpoint (no key)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(middleware.APIKey(cfg.APIKey))
	rooms.Use(middleware.RateLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst))
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}", roomHandler.Update).Methods(http.MethodPatch)
	rooms.HandleFunc("/{code}/players", roomHandler.AddPlayer).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/players", roomHandler.ListPlayers).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/events", roomHandler.Events).Methods(http.MethodGet)

	if len(cfg.CORSOrigins) == 0 {
		return r
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.APIKeyHeader},
		MaxAge:         300,
	})(r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
