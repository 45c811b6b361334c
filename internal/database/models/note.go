package models

import (
	"time"
)

type Note struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	Tags               []string  `json:"tags"`
	IsVoiceGenerated   bool      `json:"isVoiceGenerated"`
	OriginalTranscript *string   `json:"originalTranscript"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// InsertNote carries the fields a caller supplies when creating a note.
// ID and both timestamps are assigned by the repository.
type InsertNote struct {
	Title              string
	Content            string
	Tags               []string
	IsVoiceGenerated   bool
	OriginalTranscript *string
}

// UpdateNote is a partial update: nil fields are left untouched,
// non-nil fields replace the stored value.
//
// OriginalTranscript cannot be cleared back to null through a patch: an
// absent field and an explicit null both arrive as nil. The transcript is
// an audit record, so overwriting is supported but erasure is not.
type UpdateNote struct {
	Title              *string
	Content            *string
	Tags               *[]string
	IsVoiceGenerated   *bool
	OriginalTranscript *string
}
