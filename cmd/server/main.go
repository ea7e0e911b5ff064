package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/skillfeed/skillfeed/pkg/api"
	"github.com/skillfeed/skillfeed/pkg/api/auth"
	"github.com/skillfeed/skillfeed/pkg/catalog"
	"github.com/skillfeed/skillfeed/pkg/config"
	"github.com/skillfeed/skillfeed/pkg/events"
	"github.com/skillfeed/skillfeed/pkg/lib/log"
	"github.com/skillfeed/skillfeed/pkg/ranking"
	"github.com/skillfeed/skillfeed/pkg/storage/postgres"
)

func main() {
	err := run()
	if err != nil {
		panic(err)
	}
}

func run() error {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := log.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	ctx := context.Background()
	server, err := initServer(ctx, logger, cfg)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	logger.Info().
		Str("host", cfg.API.Host).
		Uint16("port", cfg.API.Port).
		Msg("Starting server")

	if err := server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	return nil
}

func initServer(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) (*api.Server, error) {
	db := postgres.NewDB(&cfg.DB)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	itemRepo := postgres.NewItemRepository(db)
	eventRepo := postgres.NewEventRepository(db)

	recorder := events.NewRecorder(logger, eventRepo)
	catalogRegistry := catalog.NewRegistry(logger, itemRepo, recorder)
	ranker := ranking.NewRanker(logger, itemRepo, eventRepo)

	authProvider, err := auth.NewJWTProvider(logger, &cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("create auth provider: %w", err)
	}

	server := api.NewServer(logger, &cfg.API, authProvider, ranker, catalogRegistry, recorder)

	return server, nil
}
