package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/answer"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/chat"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/answerclient"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/database"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/gemini"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/livefeed"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/logger"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/observability"
	repo "github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/repository/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/storage"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/handlers"
)

// Application ties the HTTP server to its lifecycle.
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	blobStore, err := provideStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	feed, stopFeed, err := livefeed.NewBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize live feed")
	}
	defer stopFeed()

	convRepository := repo.NewRepository(db, feed)
	turnRepository := repo.NewTurnRepository(db, feed)
	convService := conversation.NewService(convRepository, turnRepository, blobStore, log)

	provider := gemini.NewClient(cfg, log)
	answerService := answer.NewService(cfg, provider, log)

	var answerer chat.Answerer = answerService
	if cfg.IsRemoteAnswerer() {
		answerer = answerclient.NewClient(cfg.AnswerURL)
	}

	handlerProvider := handlers.NewProvider(cfg, answerService, convService, blobStore, feed, answerer, log)
	httpServer := httpserver.New(cfg, log, db, handlerProvider)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// blobStorage is the union of the capabilities the handlers and the
// conversation service need from a storage backend.
type blobStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PublicURL(key string) string
	RemoveByURL(ctx context.Context, url string) error
}

// provideStorage creates the configured storage backend.
func provideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (blobStorage, error) {
	if cfg.IsLocalStorage() {
		return storage.NewLocalStorage(cfg, log)
	}
	return storage.NewS3Storage(ctx, cfg, log)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
