package database

import (
	"database/sql"
	"errors"
	"fmt"

	"trl-backend/internal/models"
)

func (c *Client) CreateReport(report *models.ProjectReport) (*models.ProjectReport, error) {
	err := c.db.QueryRow(`
		INSERT INTO project_reports (project_id, filename, content_type, data, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`, report.ProjectID, report.Filename, report.ContentType, report.Data).Scan(
		&report.ID, &report.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return report, nil
}

// ListReportsByProject returns report rows without their byte payloads.
func (c *Client) ListReportsByProject(projectID int) ([]models.ProjectReport, error) {
	rows, err := c.db.Query(`
		SELECT id, project_id, filename, content_type, created_at
		FROM project_reports
		WHERE project_id = $1
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []models.ProjectReport
	for rows.Next() {
		var report models.ProjectReport
		err := rows.Scan(
			&report.ID, &report.ProjectID, &report.Filename,
			&report.ContentType, &report.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// GetReport returns a single report including its raw bytes, for download.
func (c *Client) GetReport(id int) (*models.ProjectReport, error) {
	var report models.ProjectReport
	err := c.db.QueryRow(`
		SELECT id, project_id, filename, content_type, data, created_at
		FROM project_reports
		WHERE id = $1
	`, id).Scan(
		&report.ID, &report.ProjectID, &report.Filename,
		&report.ContentType, &report.Data, &report.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return &report, nil
}
