package reports

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"trl-backend/internal/models"
)

const reportContentType = "application/pdf"

// ProjectStore resolves project ids before a report is attached to one.
type ProjectStore interface {
	GetProjectByID(id int) (*models.Project, error)
}

// ReportStore persists finished reports.
type ReportStore interface {
	CreateReport(report *models.ProjectReport) (*models.ProjectReport, error)
}

// Archiver moves a report file produced by a project-level run into the
// database, linked to its project.
type Archiver struct {
	projects ProjectStore
	reports  ReportStore
}

func NewArchiver(projects ProjectStore, reports ReportStore) *Archiver {
	return &Archiver{
		projects: projects,
		reports:  reports,
	}
}

// ArchiveFromFile reads the file fully into memory and persists one new
// report row. The display name is the file's base name; the content type is
// fixed to PDF, which is the only format the worker produces.
func (a *Archiver) ArchiveFromFile(projectID int, path string) (*models.ProjectReport, error) {
	if _, err := a.projects.GetProjectByID(projectID); err != nil {
		return nil, fmt.Errorf("failed to resolve project %d: %w", projectID, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file %s: %w", path, err)
	}

	report := &models.ProjectReport{
		ProjectID:   projectID,
		Filename:    filepath.Base(path),
		ContentType: reportContentType,
		Data:        data,
	}

	saved, err := a.reports.CreateReport(report)
	if err != nil {
		return nil, fmt.Errorf("failed to persist report for project %d: %w", projectID, err)
	}

	log.Printf("Archived report %s (%d bytes) for project %d", saved.Filename, len(data), projectID)
	return saved, nil
}
