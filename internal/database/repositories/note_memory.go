package repositories

import (
	"context"
	"notably/internal/database/models"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryNoteRepository is the reference note store: a process-lifetime map
// guarded by a single mutex so concurrent mutations on the same key never
// interleave partially. Nothing survives a restart.
type memoryNoteRepository struct {
	mu    sync.RWMutex
	notes map[string]models.Note
}

func NewMemoryNoteRepository() NoteRepository {
	return &memoryNoteRepository{notes: map[string]models.Note{}}
}

func (r *memoryNoteRepository) Create(_ context.Context, insert models.InsertNote) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	note := models.Note{
		ID:                 uuid.NewString(),
		Title:              insert.Title,
		Content:            insert.Content,
		Tags:               cloneTags(insert.Tags),
		IsVoiceGenerated:   insert.IsVoiceGenerated,
		OriginalTranscript: insert.OriginalTranscript,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	r.notes[note.ID] = note
	return copyNote(note), nil
}

func (r *memoryNoteRepository) GetByID(_ context.Context, id string) (*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	return copyNote(note), nil
}

func (r *memoryNoteRepository) GetAll(_ context.Context) ([]models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(models.Note) bool { return true }), nil
}

func (r *memoryNoteRepository) Update(_ context.Context, id string, patch models.UpdateNote) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	if patch.Tags != nil {
		note.Tags = cloneTags(*patch.Tags)
	}
	if patch.IsVoiceGenerated != nil {
		note.IsVoiceGenerated = *patch.IsVoiceGenerated
	}
	if patch.OriginalTranscript != nil {
		note.OriginalTranscript = patch.OriginalTranscript
	}
	now := time.Now().UTC()
	// updated_at must strictly increase even when the clock reads the same
	// instant twice.
	if !now.After(note.UpdatedAt) {
		now = note.UpdatedAt.Add(time.Nanosecond)
	}
	note.UpdatedAt = now
	r.notes[id] = note
	return copyNote(note), nil
}

func (r *memoryNoteRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.notes[id]
	delete(r.notes, id)
	return ok, nil
}

func (r *memoryNoteRepository) Search(_ context.Context, query string) ([]models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// The empty query is a substring of everything and matches every note.
	needle := strings.ToLower(query)
	return r.collect(func(note models.Note) bool {
		if strings.Contains(strings.ToLower(note.Title), needle) ||
			strings.Contains(strings.ToLower(note.Content), needle) {
			return true
		}
		for _, tag := range note.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
		return false
	}), nil
}

// collect returns matching notes ordered by updated_at descending. Callers
// must hold at least the read lock.
func (r *memoryNoteRepository) collect(match func(models.Note) bool) []models.Note {
	notes := []models.Note{}
	for _, note := range r.notes {
		if match(note) {
			notes = append(notes, *copyNote(note))
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		}
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return notes[i].ID < notes[j].ID
	})
	return notes
}

func cloneTags(tags []string) []string {
	cloned := make([]string, len(tags))
	copy(cloned, tags)
	return cloned
}

// copyNote detaches the returned record from the map so callers cannot
// mutate stored state through shared slices.
func copyNote(note models.Note) *models.Note {
	note.Tags = cloneTags(note.Tags)
	return &note
}
