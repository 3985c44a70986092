//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/answer"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/chat"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/domain/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/answerclient"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/database"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/gemini"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/livefeed"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/logger"
	repo "github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/repository/conversation"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/interfaces/httpserver/handlers"
)

var conversationSet = wire.NewSet(
	livefeed.NewBackend,
	wire.Bind(new(livefeed.Feed), new(livefeed.Backend)),
	wire.Bind(new(livefeed.Publisher), new(livefeed.Backend)),
	repo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*repo.Repository)),
	repo.NewTurnRepository,
	wire.Bind(new(conversation.TurnRepository), new(*repo.TurnRepository)),
	conversation.NewService,
)

var answerSet = wire.NewSet(
	gemini.NewClient,
	wire.Bind(new(answer.Provider), new(*gemini.Client)),
	answer.NewService,
	newAnswerer,
)

// BuildApplication assembles the assistant API with Wire.
func BuildApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		newGormDB,
		provideStorageSet,
		conversationSet,
		answerSet,
		handlers.NewProvider,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}

// newAnswerer selects the controller-facing answer path.
func newAnswerer(cfg *config.Config, svc *answer.Service) chat.Answerer {
	if cfg.IsRemoteAnswerer() {
		return answerclient.NewClient(cfg.AnswerURL)
	}
	return svc
}

var provideStorageSet = wire.NewSet(
	provideStorage,
	wire.Bind(new(chat.BlobStore), new(blobStorage)),
	wire.Bind(new(conversation.BlobRemover), new(blobStorage)),
)

func newGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}
