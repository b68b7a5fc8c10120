package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	UserID    int    `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type DocumentResponse struct {
	ID                    int        `json:"id"`
	Filename              string     `json:"filename"`
	FileType              string     `json:"file_type"`
	FileSize              int64      `json:"file_size"`
	Title                 string     `json:"title,omitempty"`
	Author                string     `json:"author,omitempty"`
	Status                string     `json:"status"`
	ErrorMessage          string     `json:"error_message,omitempty"`
	PageCount             int64      `json:"page_count,omitempty"`
	WordCount             int64      `json:"word_count,omitempty"`
	CharacterCount        int64      `json:"character_count,omitempty"`
	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

type ProjectResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type AnalysisRunResponse struct {
	Key        string     `json:"key"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type ReportSummary struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

type ReportListResponse struct {
	Reports []ReportSummary `json:"reports"`
}

type EvidenceResponse struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Description string    `json:"description,omitempty"`
	StorageURL  string    `json:"storage_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type EvidenceListResponse struct {
	Evidences []EvidenceResponse `json:"evidences"`
}

// FromDocument flattens the nullable DB columns for JSON clients.
func FromDocument(d *Document) DocumentResponse {
	resp := DocumentResponse{
		ID:        d.ID,
		Filename:  d.Filename,
		FileType:  d.FileType,
		FileSize:  d.FileSize,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Title.Valid {
		resp.Title = d.Title.String
	}
	if d.Author.Valid {
		resp.Author = d.Author.String
	}
	if d.ErrorMessage.Valid {
		resp.ErrorMessage = d.ErrorMessage.String
	}
	if d.PageCount.Valid {
		resp.PageCount = d.PageCount.Int64
	}
	if d.WordCount.Valid {
		resp.WordCount = d.WordCount.Int64
	}
	if d.CharacterCount.Valid {
		resp.CharacterCount = d.CharacterCount.Int64
	}
	if d.ProcessingStartedAt.Valid {
		t := d.ProcessingStartedAt.Time
		resp.ProcessingStartedAt = &t
	}
	if d.ProcessingCompletedAt.Valid {
		t := d.ProcessingCompletedAt.Time
		resp.ProcessingCompletedAt = &t
	}
	return resp
}
