package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"notably/internal/database/models"
	"strings"

	"github.com/google/uuid"
)

// NoteRepository is the authoritative holder of note records.
//
// GetAll and Search return notes ordered by updated_at descending (most
// recently touched first). Search matches the query case-insensitively as a
// substring of title, content, or any tag; the empty query matches every
// note. Delete reports whether a record existed to remove, so a repeated
// delete returns false rather than an error.
type NoteRepository interface {
	GetAll(ctx context.Context) ([]models.Note, error)
	GetByID(ctx context.Context, id string) (*models.Note, error)
	Create(ctx context.Context, insert models.InsertNote) (*models.Note, error)
	Update(ctx context.Context, id string, patch models.UpdateNote) (*models.Note, error)
	Delete(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, query string) ([]models.Note, error)
}

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository returns a Postgres-backed NoteRepository. Tags are stored
// as a jsonb array so element order and duplicates survive round-trips.
func NewNoteRepository(db *sql.DB) NoteRepository {
	return &noteRepository{db: db}
}

const noteColumns = `id, title, content, tags, is_voice_generated, original_transcript, created_at, updated_at`

func scanNote(row interface{ Scan(dest ...any) error }) (*models.Note, error) {
	var (
		note    models.Note
		rawTags []byte
	)
	err := row.Scan(&note.ID, &note.Title, &note.Content, &rawTags,
		&note.IsVoiceGenerated, &note.OriginalTranscript, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawTags, &note.Tags); err != nil {
		return nil, fmt.Errorf("error decoding tags: %v", err)
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return &note, nil
}

func (r *noteRepository) Create(ctx context.Context, insert models.InsertNote) (*models.Note, error) {
	tags := insert.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("error encoding tags: %v", err)
	}
	query := `
		INSERT INTO notes (id, title, content, tags, is_voice_generated, original_transcript, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING ` + noteColumns
	row := r.db.QueryRowContext(ctx, query, uuid.NewString(), insert.Title, insert.Content,
		rawTags, insert.IsVoiceGenerated, insert.OriginalTranscript)
	note, err := scanNote(row)
	if err != nil {
		return nil, fmt.Errorf("error creating note: %v", err)
	}
	return note, nil
}

func (r *noteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`
	note, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting note: %v", err)
	}
	return note, nil
}

func (r *noteRepository) GetAll(ctx context.Context) ([]models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes ORDER BY updated_at DESC, created_at DESC, id`
	return r.queryNotes(ctx, query)
}

func (r *noteRepository) Update(ctx context.Context, id string, patch models.UpdateNote) (*models.Note, error) {
	var rawTags []byte
	if patch.Tags != nil {
		var err error
		rawTags, err = json.Marshal(*patch.Tags)
		if err != nil {
			return nil, fmt.Errorf("error encoding tags: %v", err)
		}
	}
	// clock_timestamp keeps updated_at strictly increasing across updates
	// inside the same transaction timestamp.
	query := `
		UPDATE notes
		SET title = COALESCE($1, title),
		    content = COALESCE($2, content),
		    tags = COALESCE($3, tags),
		    is_voice_generated = COALESCE($4, is_voice_generated),
		    original_transcript = COALESCE($5, original_transcript),
		    updated_at = clock_timestamp()
		WHERE id = $6
		RETURNING ` + noteColumns
	row := r.db.QueryRowContext(ctx, query, patch.Title, patch.Content, rawTags,
		patch.IsVoiceGenerated, patch.OriginalTranscript, id)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating note: %v", err)
	}
	return note, nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting note: %v", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error getting rows affected: %v", err)
	}
	return rowsAffected > 0, nil
}

func (r *noteRepository) Search(ctx context.Context, query string) ([]models.Note, error) {
	pattern := "%" + escapeLike(query) + "%"
	searchQuery := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE title ILIKE $1
		   OR content ILIKE $1
		   OR EXISTS (
		        SELECT 1 FROM jsonb_array_elements_text(tags) AS tag
		        WHERE tag ILIKE $1
		   )
		ORDER BY updated_at DESC, created_at DESC, id`
	return r.queryNotes(ctx, searchQuery, pattern)
}

func (r *noteRepository) queryNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	result, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying notes: %v", err)
	}
	defer result.Close()
	notes := []models.Note{}
	for result.Next() {
		note, err := scanNote(result)
		if err != nil {
			return nil, fmt.Errorf("error scanning note: %v", err)
		}
		notes = append(notes, *note)
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %v", err)
	}
	return notes, nil
}

// escapeLike neutralizes LIKE metacharacters so the query is matched as a
// literal substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
