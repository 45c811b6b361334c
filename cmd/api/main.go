package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notably/internal/ai"
	"notably/internal/config"
	"notably/internal/database"
	"notably/internal/database/repositories"
	"notably/internal/logger"
	"notably/internal/server"
)

func main() {
	log := logger.NewLogger("api")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var (
		notes repositories.NoteRepository
		users repositories.UserRepository
		db    database.Service
	)
	if cfg.DatabaseURL != "" {
		db, err = database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := database.Migrate(db.DB()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		notes = repositories.NewNoteRepository(db.DB())
		users = repositories.NewUserRepository(db.DB())
		log.Info().Msg("using postgres store")
	} else {
		notes = repositories.NewMemoryNoteRepository()
		users = repositories.NewMemoryUserRepository()
		log.Info().Msg("using in-memory store")
	}

	var gen server.StudyGenerator
	g, err := ai.NewGenerator(ai.Config{
		APIKey:  cfg.OpenAIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.AITimeout,
	}, log)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		log.Warn().Msg("OPENAI_API_KEY not set, AI endpoints run in fallback mode")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to initialize ai generator")
	default:
		gen = g
	}

	srv := server.New(cfg, notes, users, gen, db, log)
	srv.RegisterFiberRoutes()

	go func() {
		if err := srv.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}
	log.Info().Msg("server stopped gracefully")
}
