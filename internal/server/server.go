package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kidusaman/StudyGroup-Backend/internal/config"
	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	"github.com/kidusaman/StudyGroup-Backend/internal/engagement"
	apperrors "github.com/kidusaman/StudyGroup-Backend/internal/errors"
	"github.com/kidusaman/StudyGroup-Backend/internal/realtime"
)

// postgresHealthChecker is a minimal interface for Postgres health checks.
type postgresHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// redisHealthChecker is a minimal interface for Redis health checks.
// May be nil when Redis is not configured.
type redisHealthChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo          *echo.Echo
	config        *config.Config
	ledger        *engagement.VoteLedger
	acceptance    *engagement.AcceptanceController
	answers       domain.AnswerStore
	notifications domain.NotificationStore
	chats         domain.ChatStore
	hub           *realtime.Hub
	publisher     domain.Publisher
	postgresCheck postgresHealthChecker
	redisCheck    redisHealthChecker
	startTime     time.Time
}

func NewServer(
	cfg *config.Config,
	ledger *engagement.VoteLedger,
	acceptance *engagement.AcceptanceController,
	answers domain.AnswerStore,
	notifications domain.NotificationStore,
	chats domain.ChatStore,
	hub *realtime.Hub,
	publisher domain.Publisher,
	postgresCheck postgresHealthChecker,
	redisCheck redisHealthChecker,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:          e,
		config:        cfg,
		ledger:        ledger,
		acceptance:    acceptance,
		answers:       answers,
		notifications: notifications,
		chats:         chats,
		hub:           hub,
		publisher:     publisher,
		postgresCheck: postgresCheck,
		redisCheck:    redisCheck,
		startTime:     time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
