package models

import (
	"database/sql"
	"time"
)

// Document lifecycle statuses. COMPLETED and FAILED are terminal.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Document is one submitted artifact and its analysis lifecycle. Title,
// author, text content and the counts are filled in by the Python worker,
// not by this service.
type Document struct {
	ID                    int
	Filename              string
	OriginalPath          string
	FileType              string
	FileSize              int64
	Title                 sql.NullString
	Author                sql.NullString
	TextContent           sql.NullString
	MetadataJSON          []byte
	Status                string
	ProcessingStartedAt   sql.NullTime
	ProcessingCompletedAt sql.NullTime
	ErrorMessage          sql.NullString
	PageCount             sql.NullInt64
	WordCount             sql.NullInt64
	CharacterCount        sql.NullInt64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Terminal reports whether no further status transition can occur.
func (d *Document) Terminal() bool {
	return d.Status == StatusCompleted || d.Status == StatusFailed
}
