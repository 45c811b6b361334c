// Package dto holds the request payloads accepted by the HTTP layer and
// their validation. Pointer fields distinguish "absent" from zero values so
// partial updates only touch what the caller sent.
package dto

import (
	"errors"
	"notably/internal/database/models"
)

var ErrInvalidPayload = errors.New("invalid payload")

type CreateNoteRequest struct {
	Title              *string  `json:"title"`
	Content            *string  `json:"content"`
	Tags               []string `json:"tags"`
	IsVoiceGenerated   *bool    `json:"isVoiceGenerated"`
	OriginalTranscript *string  `json:"originalTranscript"`
}

// Validate checks the schema (title and content required, title non-empty)
// and applies the documented defaults for the optional fields.
func (r CreateNoteRequest) Validate() (models.InsertNote, error) {
	if r.Title == nil || *r.Title == "" || r.Content == nil {
		return models.InsertNote{}, ErrInvalidPayload
	}
	insert := models.InsertNote{
		Title:              *r.Title,
		Content:            *r.Content,
		Tags:               r.Tags,
		OriginalTranscript: r.OriginalTranscript,
	}
	if insert.Tags == nil {
		insert.Tags = []string{}
	}
	if r.IsVoiceGenerated != nil {
		insert.IsVoiceGenerated = *r.IsVoiceGenerated
	}
	return insert, nil
}

type UpdateNoteRequest struct {
	Title              *string   `json:"title"`
	Content            *string   `json:"content"`
	Tags               *[]string `json:"tags"`
	IsVoiceGenerated   *bool     `json:"isVoiceGenerated"`
	OriginalTranscript *string   `json:"originalTranscript"`
}

// Validate rejects an explicit empty title; everything else is an optional
// field to merge over the stored note.
func (r UpdateNoteRequest) Validate() (models.UpdateNote, error) {
	if r.Title != nil && *r.Title == "" {
		return models.UpdateNote{}, ErrInvalidPayload
	}
	return models.UpdateNote{
		Title:              r.Title,
		Content:            r.Content,
		Tags:               r.Tags,
		IsVoiceGenerated:   r.IsVoiceGenerated,
		OriginalTranscript: r.OriginalTranscript,
	}, nil
}

type VoiceProcessRequest struct {
	Transcription *string `json:"transcription"`
}

type StudyGenerateRequest struct {
	NoteContent *string `json:"noteContent"`
}

type CreateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (r CreateUserRequest) Validate() error {
	if r.Username == nil || *r.Username == "" || r.Password == nil || *r.Password == "" {
		return ErrInvalidPayload
	}
	return nil
}
