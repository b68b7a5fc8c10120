package database

import (
	"database/sql"
	"errors"
	"fmt"

	"trl-backend/internal/models"
)

func (c *Client) CreateEvidence(evidence *models.Evidence) (*models.Evidence, error) {
	err := c.db.QueryRow(`
		INSERT INTO evidences (project_id, filename, content_type, description, storage_path, storage_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`, evidence.ProjectID, evidence.Filename, evidence.ContentType, evidence.Description,
		evidence.StoragePath, evidence.StorageURL).Scan(
		&evidence.ID, &evidence.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create evidence: %w", err)
	}

	return evidence, nil
}

func (c *Client) ListEvidencesByProject(projectID int) ([]models.Evidence, error) {
	rows, err := c.db.Query(`
		SELECT id, project_id, filename, content_type, description, storage_path, storage_url, created_at
		FROM evidences
		WHERE project_id = $1
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidences: %w", err)
	}
	defer rows.Close()

	var evidences []models.Evidence
	for rows.Next() {
		var evidence models.Evidence
		err := rows.Scan(
			&evidence.ID, &evidence.ProjectID, &evidence.Filename, &evidence.ContentType,
			&evidence.Description, &evidence.StoragePath, &evidence.StorageURL, &evidence.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evidence: %w", err)
		}
		evidences = append(evidences, evidence)
	}

	return evidences, rows.Err()
}

func (c *Client) GetEvidence(id int) (*models.Evidence, error) {
	var evidence models.Evidence
	err := c.db.QueryRow(`
		SELECT id, project_id, filename, content_type, description, storage_path, storage_url, created_at
		FROM evidences
		WHERE id = $1
	`, id).Scan(
		&evidence.ID, &evidence.ProjectID, &evidence.Filename, &evidence.ContentType,
		&evidence.Description, &evidence.StoragePath, &evidence.StorageURL, &evidence.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evidence %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evidence: %w", err)
	}

	return &evidence, nil
}

func (c *Client) DeleteEvidence(id int) error {
	res, err := c.db.Exec(`
		DELETE FROM evidences
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete evidence: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete evidence: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("evidence %d: %w", id, ErrNotFound)
	}

	return nil
}
