package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	httpapi "github.com/coachly/liveclass/internal/api/http"
	"github.com/coachly/liveclass/internal/auth"
	"github.com/coachly/liveclass/internal/config"
	"github.com/coachly/liveclass/internal/hub"
	"github.com/coachly/liveclass/internal/repository"
	"github.com/coachly/liveclass/internal/repository/model"
	"github.com/coachly/liveclass/internal/service"
	"github.com/coachly/liveclass/internal/token"
	"github.com/coachly/liveclass/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	var sessionRepo repository.SessionRepository
	var requestRepo repository.JoinRequestRepository

	if cfg.Database.DSN != "" {
		db, err := connectDatabase(cfg.Database)
		if err != nil {
			log.Error("failed to connect database", slog.Any("error", err))
			os.Exit(1)
		}
		sessionRepo = repository.NewPostgresSessionRepository(db)
		requestRepo = repository.NewPostgresJoinRequestRepository(db)
	} else {
		log.Warn("no database dsn configured, using in-memory store")
		sessionRepo = repository.NewInMemorySessionRepository()
		requestRepo = repository.NewInMemoryJoinRequestRepository()
	}

	issuer := token.NewJWTIssuer(cfg.Token.APIKey, cfg.Token.APISecret, cfg.Token.TTL)
	eventHub := hub.New(cfg.Hub.MaxSubscribers, cfg.Hub.BufferSize, log)

	sessionService := service.NewSessionService(sessionRepo, issuer, eventHub, log,
		cfg.Session.Duration, cfg.Session.DefaultCapacity, cfg.Session.MaxCapacity)
	admissionService := service.NewAdmissionService(sessionService, requestRepo, issuer, eventHub, log)

	sessionController := httpapi.NewSessionController(sessionService, admissionService, log)
	admissionController := httpapi.NewAdmissionController(admissionService, log)
	streamController := httpapi.NewStreamController(sessionService, admissionService, eventHub, log)

	authenticator := auth.NewJWTAuthenticator(cfg.Auth.Secret, cfg.Auth.Issuer)

	router := httpapi.SetupRouter(sessionController, admissionController, streamController, authenticator, cfg.CORS.AllowedOrigins)

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	db.AutoMigrate(&model.Session{}, &model.JoinRequest{})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
