package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notably/internal/ai"
	"notably/internal/config"
	"notably/internal/database/models"
	"notably/internal/database/repositories"
	"notably/internal/logger"
)

type stubGenerator struct {
	materials *ai.StudyMaterials
	processed *ai.ProcessedTranscription
	err       error
}

func (s *stubGenerator) GenerateStudyMaterials(context.Context, string) (*ai.StudyMaterials, error) {
	return s.materials, s.err
}

func (s *stubGenerator) ProcessTranscription(context.Context, string) (*ai.ProcessedTranscription, error) {
	return s.processed, s.err
}

func newTestServer(t *testing.T, gen StudyGenerator) *FiberServer {
	t.Helper()
	cfg := &config.Config{CORSOrigins: "http://localhost:5173"}
	srv := New(cfg, repositories.NewMemoryNoteRepository(), repositories.NewMemoryUserRepository(),
		gen, nil, logger.Nop())
	srv.RegisterFiberRoutes()
	return srv
}

func doJSON(t *testing.T, srv *FiberServer, method, target string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestNoteCRUDLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := doJSON(t, srv, http.MethodPost, "/api/notes", map[string]any{"title": "T", "content": "C"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[models.Note](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "T", created.Title)
	assert.Equal(t, "C", created.Content)
	assert.Equal(t, []string{}, created.Tags)
	assert.False(t, created.IsVoiceGenerated)
	assert.Nil(t, created.OriginalTranscript)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	resp = doJSON(t, srv, http.MethodGet, "/api/notes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decodeBody[[]models.Note](t, resp)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	resp = doJSON(t, srv, http.MethodGet, "/api/notes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPut, "/api/notes/"+created.ID, map[string]any{"content": "C2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[models.Note](t, resp)
	assert.Equal(t, "T", updated.Title)
	assert.Equal(t, "C2", updated.Content)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	resp = doJSON(t, srv, http.MethodDelete, "/api/notes/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodDelete, "/api/notes/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/api/notes/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateNoteValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"content": "C"}},
		{"empty title", map[string]any{"title": "", "content": "C"}},
		{"missing content", map[string]any{"title": "T"}},
		{"wrong title type", map[string]any{"title": 42, "content": "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, srv, http.MethodPost, "/api/notes", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			resp = doJSON(t, srv, http.MethodGet, "/api/notes", nil)
			assert.Empty(t, decodeBody[[]models.Note](t, resp))
		})
	}
}

func TestUpdateNoteNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := doJSON(t, srv, http.MethodPut, "/api/notes/missing", map[string]any{"content": "C"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/api/notes", nil)
	assert.Empty(t, decodeBody[[]models.Note](t, resp))
}

func TestSearchNotesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	doJSON(t, srv, http.MethodPost, "/api/notes", map[string]any{"title": "Golang", "content": "notes"})
	doJSON(t, srv, http.MethodPost, "/api/notes", map[string]any{"title": "Other", "content": "stuff", "tags": []string{"golang"}})
	doJSON(t, srv, http.MethodPost, "/api/notes", map[string]any{"title": "Groceries", "content": "milk"})

	resp := doJSON(t, srv, http.MethodGet, "/api/notes/search/GOLANG", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := decodeBody[[]models.Note](t, resp)
	assert.Len(t, results, 2)
}

func TestVoiceProcessWithoutAI(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := doJSON(t, srv, http.MethodPost, "/api/voice/process", map[string]any{"transcription": "hello world"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody[struct {
		Note      models.Note `json:"note"`
		KeyPoints []string    `json:"keyPoints"`
	}](t, resp)
	assert.Equal(t, ai.DefaultVoiceTitle, body.Note.Title)
	assert.Equal(t, "hello world", body.Note.Content)
	assert.Equal(t, []string{"voice"}, body.Note.Tags)
	assert.True(t, body.Note.IsVoiceGenerated)
	require.NotNil(t, body.Note.OriginalTranscript)
	assert.Equal(t, "hello world", *body.Note.OriginalTranscript)
	assert.Equal(t, []string{}, body.KeyPoints)

	// fallback note is persisted
	resp = doJSON(t, srv, http.MethodGet, "/api/notes", nil)
	assert.Len(t, decodeBody[[]models.Note](t, resp), 1)
}

func TestVoiceProcessAIFailureFallsBack(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{err: assert.AnError})

	resp := doJSON(t, srv, http.MethodPost, "/api/voice/process", map[string]any{"transcription": "hello world"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody[struct {
		Note      models.Note `json:"note"`
		KeyPoints []string    `json:"keyPoints"`
	}](t, resp)
	assert.Equal(t, ai.DefaultVoiceTitle, body.Note.Title)
	assert.Equal(t, "hello world", body.Note.Content)
	assert.Equal(t, []string{"voice"}, body.Note.Tags)
	assert.Equal(t, []string{}, body.KeyPoints)
}

func TestVoiceProcessAISuccess(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{processed: &ai.ProcessedTranscription{
		Title:     "Lecture 1",
		Content:   "structured",
		Tags:      []string{"math"},
		KeyPoints: []string{"p1"},
	}})

	resp := doJSON(t, srv, http.MethodPost, "/api/voice/process", map[string]any{"transcription": "raw words"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody[struct {
		Note      models.Note `json:"note"`
		KeyPoints []string    `json:"keyPoints"`
	}](t, resp)
	assert.Equal(t, "Lecture 1", body.Note.Title)
	assert.Equal(t, "structured", body.Note.Content)
	assert.Equal(t, []string{"math"}, body.Note.Tags)
	assert.True(t, body.Note.IsVoiceGenerated)
	require.NotNil(t, body.Note.OriginalTranscript)
	assert.Equal(t, "raw words", *body.Note.OriginalTranscript)
	assert.Equal(t, []string{"p1"}, body.KeyPoints)
}

func TestVoiceProcessValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := doJSON(t, srv, http.MethodPost, "/api/voice/process", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/voice/process", map[string]any{"transcription": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/voice/process", map[string]any{"transcription": 42})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStudyGenerateUnavailableWithoutAI(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := doJSON(t, srv, http.MethodPost, "/api/study/generate", map[string]any{"noteContent": "some notes"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// no note is created or modified
	resp = doJSON(t, srv, http.MethodGet, "/api/notes", nil)
	assert.Empty(t, decodeBody[[]models.Note](t, resp))
}

func TestStudyGenerateSuccess(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{materials: &ai.StudyMaterials{
		Summary:    "summary",
		Flashcards: []ai.Flashcard{{Question: "q", Answer: "a"}},
		Quiz:       []ai.QuizQuestion{},
	}})

	resp := doJSON(t, srv, http.MethodPost, "/api/study/generate", map[string]any{"noteContent": "some notes"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	materials := decodeBody[ai.StudyMaterials](t, resp)
	assert.Equal(t, "summary", materials.Summary)
	require.Len(t, materials.Flashcards, 1)
	assert.Equal(t, "q", materials.Flashcards[0].Question)
}

func TestStudyGenerateFailure(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{err: assert.AnError})

	resp := doJSON(t, srv, http.MethodPost, "/api/study/generate", map[string]any{"noteContent": "some notes"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestStudyGenerateValidation(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})

	resp := doJSON(t, srv, http.MethodPost, "/api/study/generate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := doJSON(t, srv, http.MethodPost, "/api/users", map[string]any{"username": "ada", "password": "secret"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	raw := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "ada", raw["username"])
	assert.NotContains(t, raw, "password")

	id, ok := raw["id"].(string)
	require.True(t, ok)

	resp = doJSON(t, srv, http.MethodGet, "/api/users/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/users", map[string]any{"username": "ada", "password": "other"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/api/users/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/users", map[string]any{"username": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "up", body["status"])
}
