package server

import (
	"context"
	"notably/internal/ai"
	"notably/internal/config"
	"notably/internal/database"
	"notably/internal/database/repositories"
	"notably/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// StudyGenerator is the slice of the AI generator the server depends on.
// Tests substitute a stub; a nil generator means AI is not configured.
type StudyGenerator interface {
	GenerateStudyMaterials(ctx context.Context, noteContent string) (*ai.StudyMaterials, error)
	ProcessTranscription(ctx context.Context, transcription string) (*ai.ProcessedTranscription, error)
}

type FiberServer struct {
	*fiber.App

	notes repositories.NoteRepository
	users repositories.UserRepository
	ai    StudyGenerator
	db    database.Service // nil when running on the in-memory store
	log   *logger.Logger
}

func New(cfg *config.Config, notes repositories.NoteRepository, users repositories.UserRepository,
	gen StudyGenerator, db database.Service, log *logger.Logger) *FiberServer {
	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: "notably",
			AppName:      "notably",
		}),
		notes: notes,
		users: users,
		ai:    gen,
		db:    db,
		log:   log,
	}
	server.App.Use(favicon.New())
	server.App.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		MaxAge:       3600,
	}))
	server.App.Use(fiberlog.New())
	server.App.Use(recover.New())
	return server
}
