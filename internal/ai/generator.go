// Package ai turns note text into study materials and raw voice
// transcriptions into structured notes by prompting an OpenAI chat model
// through langchaingo.
//
// Model responses are decoded defensively: a response that is valid JSON but
// misses a field, or carries the wrong type in one, yields the documented
// default for that field instead of an error. Only an unreachable provider or
// a response that is not a JSON object at all fails the call.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"notably/internal/logger"
)

// ErrNotConfigured is returned by NewGenerator when no API key is present.
// Callers surface it as service-unavailable rather than a runtime failure.
var ErrNotConfigured = errors.New("ai provider not configured: missing API key")

// Fallback values used when a model response is missing or malforms a field.
const (
	DefaultSummary    = "No summary available"
	DefaultVoiceTitle = "Voice Notes"
)

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type StudyMaterials struct {
	Summary    string         `json:"summary"`
	Flashcards []Flashcard    `json:"flashcards"`
	Quiz       []QuizQuestion `json:"quiz"`
}

// ProcessedTranscription is a voice transcription structured into note form.
type ProcessedTranscription struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	KeyPoints []string `json:"keyPoints"`
}

const transcriptionPrompt = `Please process the following voice transcription into well-structured lecture/meeting notes.

Transcription: "%s"

Format the output as JSON with the following structure:
{
  "title": "A concise, descriptive title for the notes",
  "content": "Clean, well-formatted notes with proper paragraphs, bullet points, and structure",
  "tags": ["relevant", "topic", "tags"],
  "keyPoints": ["key point 1", "key point 2", "key point 3"]
}

Make the content professional, organized, and easy to study from. Fix any grammar issues, organize ideas logically, and add structure where needed.`

const studyMaterialsPrompt = `Based on the following notes, generate study materials:

Notes: "%s"

Create comprehensive study materials in JSON format:
{
  "summary": "A concise summary highlighting the main concepts and key takeaways",
  "flashcards": [
    {"question": "Question about key concept", "answer": "Clear, concise answer"}
  ],
  "quiz": [
    {
      "question": "Multiple choice question",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": 1,
      "explanation": "Why this answer is correct"
    }
  ]
}

Generate 4-6 flashcards and 4-5 quiz questions. Make them educational and focused on the key concepts.`

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Generator struct {
	llm     llms.Model
	timeout time.Duration
	log     *logger.Logger
}

// NewGenerator builds a Generator from cfg. Returns ErrNotConfigured when the
// API key is empty so callers can run in fallback mode instead of failing.
func NewGenerator(cfg Config, log *logger.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	llm, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithResponseFormat(openai.ResponseFormatJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing openai client: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Generator{llm: llm, timeout: timeout, log: log}, nil
}

// GenerateStudyMaterials produces a summary, flashcards, and a quiz from note
// content. Generation is all-or-nothing: there is no local fallback summary.
func (g *Generator) GenerateStudyMaterials(ctx context.Context, noteContent string) (*StudyMaterials, error) {
	raw, err := g.complete(ctx, fmt.Sprintf(studyMaterialsPrompt, noteContent))
	if err != nil {
		return nil, fmt.Errorf("error generating study materials: %w", err)
	}
	materials, err := decodeStudyMaterials(raw)
	if err != nil {
		return nil, fmt.Errorf("error decoding study materials: %w", err)
	}
	return materials, nil
}

// ProcessTranscription structures a raw voice transcription into note fields.
// The transcription is passed through unchanged as content when the model
// omits one.
func (g *Generator) ProcessTranscription(ctx context.Context, transcription string) (*ProcessedTranscription, error) {
	raw, err := g.complete(ctx, fmt.Sprintf(transcriptionPrompt, transcription))
	if err != nil {
		return nil, fmt.Errorf("error processing transcription: %w", err)
	}
	processed, err := decodeTranscription(raw, transcription)
	if err != nil {
		return nil, fmt.Errorf("error decoding processed transcription: %w", err)
	}
	return processed, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	start := time.Now()
	raw, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
	if err != nil {
		return "", err
	}
	g.log.Debug().Dur("took", time.Since(start)).Msg("completion finished")
	return raw, nil
}

func decodeStudyMaterials(raw string) (*StudyMaterials, error) {
	var payload struct {
		Summary    *string         `json:"summary"`
		Flashcards json.RawMessage `json:"flashcards"`
		Quiz       json.RawMessage `json:"quiz"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}

	materials := &StudyMaterials{
		Summary:    DefaultSummary,
		Flashcards: []Flashcard{},
		Quiz:       []QuizQuestion{},
	}
	if payload.Summary != nil && *payload.Summary != "" {
		materials.Summary = *payload.Summary
	}
	var flashcards []Flashcard
	if err := json.Unmarshal(payload.Flashcards, &flashcards); err == nil && flashcards != nil {
		materials.Flashcards = flashcards
	}
	var quiz []QuizQuestion
	if err := json.Unmarshal(payload.Quiz, &quiz); err == nil && quiz != nil {
		materials.Quiz = quiz
	}
	return materials, nil
}

func decodeTranscription(raw, transcription string) (*ProcessedTranscription, error) {
	var payload struct {
		Title     *string         `json:"title"`
		Content   *string         `json:"content"`
		Tags      json.RawMessage `json:"tags"`
		KeyPoints json.RawMessage `json:"keyPoints"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}

	processed := &ProcessedTranscription{
		Title:     DefaultVoiceTitle,
		Content:   transcription,
		Tags:      []string{},
		KeyPoints: []string{},
	}
	if payload.Title != nil && *payload.Title != "" {
		processed.Title = *payload.Title
	}
	if payload.Content != nil && *payload.Content != "" {
		processed.Content = *payload.Content
	}
	var tags []string
	if err := json.Unmarshal(payload.Tags, &tags); err == nil && tags != nil {
		processed.Tags = tags
	}
	var keyPoints []string
	if err := json.Unmarshal(payload.KeyPoints, &keyPoints); err == nil && keyPoints != nil {
		processed.KeyPoints = keyPoints
	}
	return processed, nil
}
