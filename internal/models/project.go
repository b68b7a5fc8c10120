package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
}

type Project struct {
	ID          int
	UserID      int
	Name        string
	Description sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Evidence is a supporting file attached to a project. The bytes live in
// Supabase storage; only the object key and public URL are persisted here.
type Evidence struct {
	ID          int
	ProjectID   int
	Filename    string
	ContentType string
	Description sql.NullString
	StoragePath string
	StorageURL  string
	CreatedAt   time.Time
}
