package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"trl-backend/internal/models"
)

// DocumentCreator persists new documents.
type DocumentCreator interface {
	CreateDocument(doc *models.Document) (*models.Document, error)
}

// AnalysisTrigger hands a saved document off to the background pipeline.
type AnalysisTrigger interface {
	TriggerDocumentAnalysis(documentID int, filePath string) error
}

// IngestionService accepts an uploaded artifact, writes it to durable local
// storage, records it as PENDING and kicks off analysis. The caller always
// gets the PENDING document back, never the eventual outcome.
type IngestionService struct {
	store        DocumentCreator
	orchestrator AnalysisTrigger
	uploadDir    string
}

func NewIngestionService(store DocumentCreator, orchestrator AnalysisTrigger, uploadDir string) *IngestionService {
	return &IngestionService{
		store:        store,
		orchestrator: orchestrator,
		uploadDir:    uploadDir,
	}
}

func (s *IngestionService) Ingest(data []byte, originalName, contentType string) (*models.Document, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Millisecond arrival prefix keeps names collision-free without
	// scanning the directory.
	filename := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filepath.Base(originalName))
	path := filepath.Join(s.uploadDir, filename)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload path: %w", err)
	}

	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write uploaded file: %w", err)
	}

	log.Printf("Saved upload to %s", absPath)

	doc := &models.Document{
		Filename:     filename,
		OriginalPath: absPath,
		FileType:     contentType,
		FileSize:     int64(len(data)),
		Status:       models.StatusPending,
	}

	saved, err := s.store.CreateDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to persist document: %w", err)
	}

	if err := s.orchestrator.TriggerDocumentAnalysis(saved.ID, absPath); err != nil {
		// A fresh document id cannot collide with an in-flight run; if it
		// somehow does, the document stays PENDING and the caller can
		// re-trigger later.
		log.Printf("Failed to trigger analysis for document %d: %v", saved.ID, err)
	}

	return saved, nil
}
