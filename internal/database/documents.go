package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trl-backend/internal/models"
)

const documentColumns = `id, filename, original_path, file_type, file_size, title, author,
		text_content, metadata_json, status, processing_started_at, processing_completed_at,
		error_message, page_count, word_count, character_count, created_at, updated_at`

func scanDocument(row interface{ Scan(...interface{}) error }) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.OriginalPath, &doc.FileType, &doc.FileSize,
		&doc.Title, &doc.Author, &doc.TextContent, &doc.MetadataJSON, &doc.Status,
		&doc.ProcessingStartedAt, &doc.ProcessingCompletedAt, &doc.ErrorMessage,
		&doc.PageCount, &doc.WordCount, &doc.CharacterCount, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) CreateDocument(doc *models.Document) (*models.Document, error) {
	err := c.db.QueryRow(`
		INSERT INTO documents (filename, original_path, file_type, file_size, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, doc.Filename, doc.OriginalPath, doc.FileType, doc.FileSize, doc.Status).Scan(
		&doc.ID, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return doc, nil
}

func (c *Client) GetDocument(id int) (*models.Document, error) {
	doc, err := scanDocument(c.db.QueryRow(`
		SELECT `+documentColumns+`
		FROM documents
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

func (c *Client) ListDocuments() ([]models.Document, error) {
	return c.queryDocuments(`
		SELECT `+documentColumns+`
		FROM documents
		ORDER BY created_at DESC
	`)
}

func (c *Client) ListDocumentsByStatus(status string) ([]models.Document, error) {
	return c.queryDocuments(`
		SELECT `+documentColumns+`
		FROM documents
		WHERE status = $1
		ORDER BY created_at DESC
	`, status)
}

func (c *Client) queryDocuments(query string, args ...interface{}) ([]models.Document, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}

	return docs, rows.Err()
}

// MarkDocumentProcessing moves a PENDING document to PROCESSING. Terminal
// documents are left untouched.
func (c *Client) MarkDocumentProcessing(id int, startedAt time.Time) error {
	return c.guardedUpdate(`
		UPDATE documents
		SET status = $1, processing_started_at = $2, updated_at = NOW()
		WHERE id = $3 AND status NOT IN ($4, $5)
	`, id, models.StatusProcessing, startedAt, id, models.StatusCompleted, models.StatusFailed)
}

// CompleteDocument applies the terminal COMPLETED transition. The WHERE
// clause rejects the write if another unit already finalized the row, so
// exactly one terminal update wins.
func (c *Client) CompleteDocument(id int, completedAt time.Time) error {
	return c.guardedUpdate(`
		UPDATE documents
		SET status = $1, processing_completed_at = $2, error_message = NULL, updated_at = NOW()
		WHERE id = $3 AND status NOT IN ($4, $5)
	`, id, models.StatusCompleted, completedAt, id, models.StatusCompleted, models.StatusFailed)
}

// FailDocument applies the terminal FAILED transition with a diagnostic
// message. Same single-winner guard as CompleteDocument.
func (c *Client) FailDocument(id int, errorMessage string, completedAt time.Time) error {
	return c.guardedUpdate(`
		UPDATE documents
		SET status = $1, processing_completed_at = $2, error_message = $6, updated_at = NOW()
		WHERE id = $3 AND status NOT IN ($4, $5)
	`, id, models.StatusFailed, completedAt, id, models.StatusCompleted, models.StatusFailed, errorMessage)
}

func (c *Client) guardedUpdate(query string, id int, args ...interface{}) error {
	res, err := c.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update document %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("document %d: %w", id, ErrDocumentFinal)
	}

	return nil
}
