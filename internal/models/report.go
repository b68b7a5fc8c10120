package models

import "time"

// ProjectReport is one generated analysis report for a project. Rows are
// append-only: created once after a successful project-level run, read-only
// thereafter.
type ProjectReport struct {
	ID          int
	ProjectID   int
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}
