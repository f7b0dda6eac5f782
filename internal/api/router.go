// Package api assembles the HTTP surface described in spec §6 on top of
// gorilla/mux, grounded on the teacher's internal/api/router.go middleware
// stack and subrouter-per-concern layout.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/noteflow/syncserver/internal/api/handlers"
	"github.com/noteflow/syncserver/internal/api/middleware"
	"github.com/noteflow/syncserver/internal/conflict"
	"github.com/noteflow/syncserver/internal/fallback"
	"github.com/noteflow/syncserver/internal/queue"
	syncpkg "github.com/noteflow/syncserver/internal/sync"
)

// Config bundles every collaborator the router needs to build handlers.
type Config struct {
	Coordinator *syncpkg.Coordinator
	Engine      *conflict.Engine
	Queue       *queue.Queue
	Fallback    *fallback.Manager
	Verifier    middleware.Verifier

	Logger *slog.Logger

	PollIntervalMs     int64
	QueueMaxRetries    int
	QueueRetryDelay    time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
	CORS               middleware.CORSConfig
}

// DefaultConfig fills in the non-collaborator fields with spec §6 defaults.
func DefaultConfig() Config {
	return Config{
		PollIntervalMs:     5000,
		QueueMaxRetries:    3,
		QueueRetryDelay:    time.Second,
		RateLimitPerMinute: 300,
		RateLimitBurst:     50,
		CORS:               middleware.DefaultCORSConfig(),
	}
}

// NewRouter builds the complete mux.Router: global middleware, then every
// spec §6 route under /sync, all requiring bearer auth (the push
// handshake is the one exception, handled separately by
// internal/realtime.HandleWebSocket).
func NewRouter(cfg Config) *mux.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS(cfg.CORS))

	router.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	sync := router.PathPrefix("/sync").Subrouter()
	sync.Use(middleware.Auth(cfg.Verifier))
	sync.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)))
	sync.Use(middleware.RequireJSON(1 << 20))

	syncH := &handlers.Sync{Coordinator: cfg.Coordinator, PollIntervalMs: cfg.PollIntervalMs}
	sync.HandleFunc("/sync", syncH.Handle).Methods(http.MethodPost)
	sync.HandleFunc("/poll", syncH.Poll).Methods(http.MethodPost)
	sync.HandleFunc("/status", syncH.Status).Methods(http.MethodGet)
	sync.HandleFunc("/cancel", syncH.Cancel).Methods(http.MethodPost)
	sync.HandleFunc("/data-diff", syncH.DataDiff).Methods(http.MethodPost)

	queueH := &handlers.Queue{
		Queue: cfg.Queue, Coordinator: cfg.Coordinator,
		MaxRetries: cfg.QueueMaxRetries, RetryDelay: cfg.QueueRetryDelay,
	}
	retryH := &handlers.Retry{Queue: cfg.Queue}
	sync.HandleFunc("/retry", retryH.Handle).Methods(http.MethodPost)
	sync.HandleFunc("/queue/process", queueH.Process).Methods(http.MethodPost)
	sync.HandleFunc("/queue/status", queueH.Status).Methods(http.MethodGet)
	sync.HandleFunc("/queue/stats", queueH.Stats).Methods(http.MethodGet)
	sync.HandleFunc("/queue", queueH.List).Methods(http.MethodGet)
	sync.HandleFunc("/queue", queueH.Enqueue).Methods(http.MethodPost)
	sync.HandleFunc("/queue", queueH.Remove).Methods(http.MethodDelete)
	sync.HandleFunc("/queue/{opId}", queueH.Remove).Methods(http.MethodDelete)

	conflictsH := &handlers.Conflicts{Engine: cfg.Engine, Coordinator: cfg.Coordinator}
	// Fixed-suffix routes must be registered before the {id} wildcard or mux
	// would route "stats"/"resolve" into it.
	sync.HandleFunc("/conflicts/stats", conflictsH.Stats).Methods(http.MethodGet)
	sync.HandleFunc("/conflicts/resolve", conflictsH.BatchResolve).Methods(http.MethodPost)
	sync.HandleFunc("/conflicts", conflictsH.List).Methods(http.MethodGet)
	sync.HandleFunc("/conflicts/{id}", conflictsH.Get).Methods(http.MethodGet)
	sync.HandleFunc("/conflicts/{id}/resolve", conflictsH.Resolve).Methods(http.MethodPost)
	sync.HandleFunc("/conflicts/{id}/ignore", conflictsH.Ignore).Methods(http.MethodPost)

	fallbackH := &handlers.Fallback{Manager: cfg.Fallback}
	sync.HandleFunc("/fallback-status", fallbackH.Status).Methods(http.MethodGet)
	sync.HandleFunc("/force-fallback", fallbackH.Force).Methods(http.MethodPost)
	sync.HandleFunc("/exit-fallback", fallbackH.Exit).Methods(http.MethodPost)

	return router
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
