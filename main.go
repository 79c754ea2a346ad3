package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/task-manager/internal/config"
	"github.com/msomdec/task-manager/internal/domain"
	"github.com/msomdec/task-manager/internal/handler"
	"github.com/msomdec/task-manager/internal/metrics"
	redisrepo "github.com/msomdec/task-manager/internal/repository/redis"
	"github.com/msomdec/task-manager/internal/repository/sqlite"
	"github.com/msomdec/task-manager/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("taskmanager", pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "path", cfg.Database.Path)

	revocations, closeRevocations, err := newRevocationStore(cfg.Redis, db)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer closeRevocations()

	authService := service.NewAuthService(db.Users(), revocations, service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		Expiration: cfg.JWT.Expiration,
	}, cfg.Auth.BcryptCost)
	taskService := service.NewTaskService(db.Tasks())

	srv := &http.Server{
		Addr: ":" + cfg.HTTP.Port,
		Handler: handler.NewRouter(handler.Deps{
			Auth:         authService,
			Tasks:        taskService,
			DB:           db,
			Metrics:      metrics.New(),
			Logger:       logger,
			CookieSecure: cfg.Auth.CookieSecure,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newRevocationStore returns the Redis store when an address is configured
// and the SQLite table otherwise.
func newRevocationStore(cfg config.RedisConfig, db *sqlite.DB) (domain.RevocationStore, func(), error) {
	if cfg.Addr == "" {
		return db.Revocations(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, err
	}
	slog.Info("using redis revocation store", "addr", cfg.Addr)
	return redisrepo.NewRevocationStore(rdb), func() { rdb.Close() }, nil
}
