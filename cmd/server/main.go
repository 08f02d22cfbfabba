package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kidusaman/StudyGroup-Backend/internal/config"
	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	"github.com/kidusaman/StudyGroup-Backend/internal/engagement"
	"github.com/kidusaman/StudyGroup-Backend/internal/logging"
	"github.com/kidusaman/StudyGroup-Backend/internal/notify"
	"github.com/kidusaman/StudyGroup-Backend/internal/postgres"
	"github.com/kidusaman/StudyGroup-Backend/internal/realtime"
	"github.com/kidusaman/StudyGroup-Backend/internal/redis"
	"github.com/kidusaman/StudyGroup-Backend/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *postgres.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	return db
}

// setupRedis connects to Redis when configured. Redis is optional: without it
// the unread counter is served straight from Postgres.
func setupRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, running without cache")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, hub *realtime.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		hub.Shutdown()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	db := setupDB(cfg)
	defer db.Close()

	redisClient := setupRedis(cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Stores
	voteStore := postgres.NewVoteStore(db)
	answerStore := postgres.NewAnswerStore(db)
	chatStore := postgres.NewChatStore(db)

	var notificationStore domain.NotificationStore = postgres.NewNotificationStore(db)
	if redisClient != nil {
		notificationStore = redis.NewCachedNotificationStore(notificationStore, redisClient)
	}

	// Fan-out and dispatch. With Redis, room events relay across instances.
	hub := realtime.NewHub(clock, cfg.SessionSendBuffer, cfg.MaxSessionsPerUser)

	var publisher domain.Publisher = hub
	bridgeCtx, cancelBridge := context.WithCancel(context.Background())
	defer cancelBridge()
	if redisClient != nil {
		bridge := redis.NewFanoutBridge(redisClient, hub)
		go bridge.Start(bridgeCtx)
		publisher = bridge
	}

	dispatcher := notify.NewDispatcher(notificationStore, publisher)

	// Use cases
	ledger := engagement.NewVoteLedger(voteStore)
	acceptance := engagement.NewAcceptanceController(answerStore, dispatcher)

	srv := server.NewServer(cfg, ledger, acceptance, answerStore, notificationStore, chatStore, hub, publisher, db, healthChecker(redisClient))

	done := runGracefulShutdown(srv, hub)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}

// healthChecker avoids handing the server a typed-nil interface when Redis is
// not configured.
func healthChecker(client *redis.Client) interface{ Ping(context.Context) error } {
	if client == nil {
		return nil
	}
	return client
}
