// Package main is the sync server's entry point.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/noteflow/syncserver/internal/api"
	"github.com/noteflow/syncserver/internal/auth"
	"github.com/noteflow/syncserver/internal/conflict"
	"github.com/noteflow/syncserver/internal/conflict/recentops"
	"github.com/noteflow/syncserver/internal/config"
	"github.com/noteflow/syncserver/internal/database/migrations"
	dbpostgres "github.com/noteflow/syncserver/internal/database/postgres"
	"github.com/noteflow/syncserver/internal/fallback"
	"github.com/noteflow/syncserver/internal/logging"
	"github.com/noteflow/syncserver/internal/queue"
	"github.com/noteflow/syncserver/internal/realtime"
	"github.com/noteflow/syncserver/internal/repository"
	"github.com/noteflow/syncserver/internal/repository/postgres"
	"github.com/noteflow/syncserver/internal/repository/sqlite"
	syncpkg "github.com/noteflow/syncserver/internal/sync"
)

var (
	version    = "dev"
	configPath string
	noMigrate  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "syncserver",
	Short:   "Multi-client note-taking sync server",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket sync server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	serveCmd.Flags().BoolVar(&noMigrate, "no-migrate", false, "skip running database migrations on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log)
	logger.Info("starting sync server", "profile", cfg.Profile, "version", version)

	repo, closeRepo, err := openRepository(context.Background(), cfg, logger)
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}
	defer closeRepo()

	recentIndex := openRecentOpsIndex(cfg, logger)

	engine := conflict.New(repo, recentIndex, conflict.Retention{
		Days:     cfg.Conflict.RetentionDays,
		MaxCount: cfg.Conflict.MaxRecords,
	})
	stopSweep := engine.Registry().RunSweeper(cfg.Conflict.SweepInterval)
	defer stopSweep()

	coordinator := syncpkg.New(repo, engine, logger, cfg.Sync.Timeout)
	opsQueue := queue.New()
	verifier := auth.NewTokenVerifier(loadStaticTokens())

	fallbackMgr := fallback.NewManager(repo, fallback.HealthConfig{
		DisconnectThreshold: cfg.Fallback.DisconnectThreshold,
		DisconnectWindow:    cfg.Fallback.DisconnectWindow,
		TimeoutThresholdMs:  cfg.Fallback.TimeoutThresholdMs,
		AutoRecoveryDelay:   cfg.Fallback.AutoRecoveryDelay,
		MaxResponseSamples:  fallback.DefaultHealthConfig.MaxResponseSamples,
	}, fallback.PollConfig{
		NormalIntervalMs: cfg.Fallback.NormalIntervalMs,
		HighIntervalMs:   cfg.Fallback.HighIntervalMs,
		MinIntervalMs:    cfg.Fallback.MinIntervalMs,
		MaxIntervalMs:    cfg.Fallback.MaxIntervalMs,
	}, logger)

	supervisor := realtime.New(realtime.Config{
		AuthTimeout:        cfg.Realtime.AuthTimeout,
		HeartbeatInterval:  cfg.Realtime.HeartbeatInterval,
		HeartbeatTimeout:   cfg.Realtime.HeartbeatTimeout,
		MaxAuthAttempts:    cfg.Realtime.MaxAuthAttempts,
		PerUserMaxSessions: cfg.Realtime.PerUserMaxSessions,
	}, verifier, coordinator, fallbackNotifier{fallbackMgr}, logger)
	defer supervisor.Shutdown()

	routerCfg := api.DefaultConfig()
	routerCfg.Coordinator = coordinator
	routerCfg.Engine = engine
	routerCfg.Queue = opsQueue
	routerCfg.Fallback = fallbackMgr
	routerCfg.Verifier = verifier
	routerCfg.Logger = logger
	routerCfg.PollIntervalMs = cfg.Fallback.NormalIntervalMs
	routerCfg.QueueMaxRetries = cfg.Sync.MaxRetries
	routerCfg.QueueRetryDelay = cfg.Sync.RetryDelay

	router := api.NewRouter(routerCfg)
	router.HandleFunc("/ws", realtime.HandleWebSocket(supervisor, logger)).Methods(http.MethodGet)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

// openRepository selects the profile's backing store and, unless
// --no-migrate was passed, applies pending goose migrations against it
// before handing the repository back.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Repository, func(), error) {
	switch cfg.Profile {
	case config.ProfileStandard:
		if !noMigrate {
			dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				cfg.Database.Host, cfg.Database.Port, cfg.Database.Username, cfg.Database.Password,
				cfg.Database.Database, cfg.Database.SSLMode)
			migrateDB, err := sql.Open("pgx", dsn)
			if err != nil {
				return nil, nil, fmt.Errorf("opening postgres for migrations: %w", err)
			}
			if err := migrations.RunPostgres(migrateDB); err != nil {
				migrateDB.Close()
				return nil, nil, fmt.Errorf("running postgres migrations: %w", err)
			}
			migrateDB.Close()
		}

		pool, err := dbpostgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		repo, err := postgres.New(pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("initializing postgres repository: %w", err)
		}
		logger.Info("connected to postgres", "host", cfg.Database.Host, "database", cfg.Database.Database)
		return repo, pool.Close, nil

	default:
		repo, err := sqlite.Open(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite: %w", err)
		}
		if !noMigrate {
			if err := migrations.RunSQLite(repo.DB()); err != nil {
				repo.Close()
				return nil, nil, fmt.Errorf("running sqlite migrations: %w", err)
			}
		}
		logger.Info("opened sqlite database", "path", cfg.Database.SQLitePath)
		closeFn := func() { _ = repo.Close() }
		return repo, closeFn, nil
	}
}

// openRecentOpsIndex wires the conflict engine's optional "concurrent
// field change" signal to Redis when enabled, falling back to the
// always-false default otherwise.
func openRecentOpsIndex(cfg *config.Config, logger *slog.Logger) recentops.Index {
	if !cfg.Redis.Enabled {
		return recentops.Noop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})
	logger.Info("using redis-backed recent-ops index", "addr", cfg.Redis.Addr)
	return recentops.NewRedisIndex(client, cfg.Redis.RecentOpsTTL)
}

// fallbackNotifier adapts fallback.Manager's PullResponse callback shape to
// the realtime.FallbackNotifier interface's transport-agnostic PullEvent,
// so internal/realtime need not import internal/fallback.
type fallbackNotifier struct {
	mgr *fallback.Manager
}

func (f fallbackNotifier) HandleDisconnection(ctx context.Context, userID int64, clientID, reason string, since time.Time, cb func(realtime.PullEvent)) {
	f.mgr.HandleDisconnection(ctx, userID, clientID, reason, since, func(r fallback.PullResponse) {
		cb(realtime.PullEvent{
			Updates:                 r.Updates,
			HasMore:                 r.HasMore,
			ServerTime:              r.ServerTime,
			SuggestedNextIntervalMs: r.SuggestedNextIntervalMs,
		})
	})
}

func (f fallbackNotifier) HandleReconnect(clientID string) { f.mgr.HandleReconnect(clientID) }
func (f fallbackNotifier) HandleHeartbeat(clientID string) { f.mgr.HandleHeartbeat(clientID) }

func loadStaticTokens() map[string]int64 {
	tokens := map[string]int64{}
	for _, kv := range os.Environ() {
		const prefix = "SYNCSERVER_TOKEN_"
		if len(kv) <= len(prefix) || kv[:len(prefix)] != prefix {
			continue
		}
		// SYNCSERVER_TOKEN_<userId>=<token>
		rest := kv[len(prefix):]
		eq := -1
		for i, c := range rest {
			if c == '=' {
				eq = i
				break
			}
		}
		if eq <= 0 {
			continue
		}
		var userID int64
		if _, err := fmt.Sscanf(rest[:eq], "%d", &userID); err != nil {
			continue
		}
		tokens[rest[eq+1:]] = userID
	}
	return tokens
}
