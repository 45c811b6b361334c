package server

import (
	"errors"
	"net/url"
	"notably/internal/ai"
	"notably/internal/database/dto"
	"notably/internal/database/models"
	"notably/internal/database/repositories"
	"notably/internal/utils"

	"github.com/gofiber/fiber/v2"
)

func (s *FiberServer) RegisterFiberRoutes() {
	s.App.Get("/health", s.healthHandler)

	api := s.App.Group("/api")

	api.Get("/notes", s.getAllNotes)
	api.Get("/notes/search/:query", s.searchNotes)
	api.Get("/notes/:id", s.getSingleNote)
	api.Post("/notes", s.createNote)
	api.Put("/notes/:id", s.updateNote)
	api.Delete("/notes/:id", s.deleteNote)

	api.Post("/voice/process", s.processVoice)
	api.Post("/study/generate", s.generateStudyMaterials)

	api.Post("/users", s.createUser)
	api.Get("/users/:id", s.getUser)
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	if s.db != nil {
		return c.JSON(s.db.Health())
	}
	return c.JSON(fiber.Map{"status": "up", "store": "memory"})
}

func (s *FiberServer) getAllNotes(c *fiber.Ctx) error {
	notes, err := s.notes.GetAll(c.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("error fetching notes")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notes"})
	}
	return c.JSON(notes)
}

func (s *FiberServer) getSingleNote(c *fiber.Ctx) error {
	note, err := s.notes.GetByID(c.Context(), c.Params("id"))
	if errors.Is(err, repositories.ErrNoteNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Note not found"})
	}
	if err != nil {
		s.log.Error().Err(err).Msg("error fetching note")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch note"})
	}
	return c.JSON(note)
}

func (s *FiberServer) createNote(c *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid note data"})
	}
	insert, err := req.Validate()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid note data"})
	}
	note, err := s.notes.Create(c.Context(), insert)
	if err != nil {
		s.log.Error().Err(err).Msg("error creating note")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create note"})
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (s *FiberServer) updateNote(c *fiber.Ctx) error {
	var req dto.UpdateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid note data"})
	}
	patch, err := req.Validate()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid note data"})
	}
	note, err := s.notes.Update(c.Context(), c.Params("id"), patch)
	if errors.Is(err, repositories.ErrNoteNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Note not found"})
	}
	if err != nil {
		s.log.Error().Err(err).Msg("error updating note")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update note"})
	}
	return c.JSON(note)
}

func (s *FiberServer) deleteNote(c *fiber.Ctx) error {
	deleted, err := s.notes.Delete(c.Context(), c.Params("id"))
	if err != nil {
		s.log.Error().Err(err).Msg("error deleting note")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete note"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Note not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) searchNotes(c *fiber.Ctx) error {
	query, err := url.PathUnescape(c.Params("query"))
	if err != nil {
		query = c.Params("query")
	}
	notes, err := s.notes.Search(c.Context(), query)
	if err != nil {
		s.log.Error().Err(err).Msg("error searching notes")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to search notes"})
	}
	return c.JSON(notes)
}

// processVoice always persists a note. With no generator configured the raw
// transcription is saved directly; a failing generator degrades to the same
// fallback so the transcription is never lost.
func (s *FiberServer) processVoice(c *fiber.Ctx) error {
	var req dto.VoiceProcessRequest
	if err := c.BodyParser(&req); err != nil || req.Transcription == nil || *req.Transcription == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Transcription text is required"})
	}
	transcription := *req.Transcription

	insert := models.InsertNote{
		Title:              ai.DefaultVoiceTitle,
		Content:            transcription,
		Tags:               []string{"voice"},
		IsVoiceGenerated:   true,
		OriginalTranscript: &transcription,
	}
	keyPoints := []string{}

	if s.ai != nil {
		processed, err := s.ai.ProcessTranscription(c.Context(), transcription)
		if err != nil {
			s.log.Error().Err(err).Msg("ai processing failed, falling back to raw transcription")
		} else {
			insert.Title = processed.Title
			insert.Content = processed.Content
			insert.Tags = processed.Tags
			keyPoints = processed.KeyPoints
		}
	}

	note, err := s.notes.Create(c.Context(), insert)
	if err != nil {
		s.log.Error().Err(err).Msg("error persisting voice note")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process voice transcription"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"note": note, "keyPoints": keyPoints})
}

func (s *FiberServer) generateStudyMaterials(c *fiber.Ctx) error {
	var req dto.StudyGenerateRequest
	if err := c.BodyParser(&req); err != nil || req.NoteContent == nil || *req.NoteContent == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Note content is required"})
	}
	if s.ai == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "AI features not available - API key not configured"})
	}
	materials, err := s.ai.GenerateStudyMaterials(c.Context(), *req.NoteContent)
	if err != nil {
		s.log.Error().Err(err).Msg("error generating study materials")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate study materials"})
	}
	return c.JSON(materials)
}

func (s *FiberServer) createUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user data"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user data"})
	}
	hashed, err := utils.HashPassword(*req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("error hashing password")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}
	user, err := s.users.Create(c.Context(), models.InsertUser{Username: *req.Username, Password: hashed})
	if errors.Is(err, repositories.ErrUsernameTaken) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already taken"})
	}
	if err != nil {
		s.log.Error().Err(err).Msg("error creating user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (s *FiberServer) getUser(c *fiber.Ctx) error {
	user, err := s.users.GetByID(c.Context(), c.Params("id"))
	if errors.Is(err, repositories.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if err != nil {
		s.log.Error().Err(err).Msg("error fetching user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}
	return c.JSON(user)
}
