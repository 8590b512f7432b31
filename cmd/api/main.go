// Package main is the entry point for the TravelPuzzle API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for goose
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/YulanysYula/TravelPuzzle/internal/config"
	"github.com/YulanysYula/TravelPuzzle/internal/handler"
	"github.com/YulanysYula/TravelPuzzle/internal/localstore"
	"github.com/YulanysYula/TravelPuzzle/internal/middleware"
	"github.com/YulanysYula/TravelPuzzle/internal/remotestore"
	"github.com/YulanysYula/TravelPuzzle/internal/service"
	"github.com/YulanysYula/TravelPuzzle/internal/session"
	syncer "github.com/YulanysYula/TravelPuzzle/internal/sync"
	"github.com/YulanysYula/TravelPuzzle/migrations"
)

// maxRequestBody bounds request bodies. Cover images travel as base64 data
// URIs, so the cap sits above the raw 5 MiB image limit.
const maxRequestBody = 8 << 20

func main() {
	// --- Config -----------------------------------------------------------
	// .env is a development convenience; a missing file is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Local cache ------------------------------------------------------
	local, err := localstore.New(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open local cache", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	// --- Remote store (optional) ------------------------------------------
	// The remote store is best-effort everywhere: when it is not configured
	// or not reachable the app runs local-only and every remote call
	// degrades silently. Only the local cache is required to start.
	remote := remotestore.New(nil, cfg.RemoteTimeout, logger)
	if cfg.RemoteConfigured() {
		pool, poolErr := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if poolErr != nil {
			logger.Warn("remote store disabled: pool setup failed", "error", poolErr)
		} else if pingErr := pool.Ping(context.Background()); pingErr != nil {
			logger.Warn("remote store disabled: database unreachable", "error", pingErr)
			pool.Close()
		} else {
			defer pool.Close()
			if migErr := migrate(cfg.DatabaseURL); migErr != nil {
				logger.Warn("remote migrations failed", "error", migErr)
			}
			remote = remotestore.New(pool, cfg.RemoteTimeout, logger)
			logger.Info("remote store connected")
		}
	} else {
		logger.Info("no remote store configured, running local-only")
	}

	// --- Services ---------------------------------------------------------
	sessions := session.NewRegistry()
	sync := syncer.New(local, remote, sessions, cfg.SyncInterval, logger)

	users := service.NewUserService(local, remote, sessions, logger)
	trips := service.NewTripService(local, remote, sync, sessions, cfg.ApprovalPolicy, cfg.DefaultCurrency, logger)
	share := service.NewShareService(local, remote, cfg.BaseURL, logger)

	// --- Background sync --------------------------------------------------
	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()
	go sync.Run(syncCtx)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID -> RealIP -> SlogLogger -> Recoverer ->
	// CORS -> body size cap. Recoverer catches panics and returns HTTP 500
	// instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxRequestBody))

	srv := handler.NewServer(users, trips, share, cfg.JWTSecret)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutting down server")
	stopSync()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// migrate applies all embedded migrations through the goose provider.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}
