package services_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trl-backend/internal/models"
	"trl-backend/internal/services"
)

type stubDocumentStore struct {
	created []*models.Document
	err     error
}

func (s *stubDocumentStore) CreateDocument(doc *models.Document) (*models.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	saved := *doc
	saved.ID = len(s.created) + 1
	s.created = append(s.created, &saved)
	return &saved, nil
}

type stubTrigger struct {
	documentIDs []int
	filePaths   []string
	err         error
}

func (s *stubTrigger) TriggerDocumentAnalysis(documentID int, filePath string) error {
	s.documentIDs = append(s.documentIDs, documentID)
	s.filePaths = append(s.filePaths, filePath)
	return s.err
}

func TestIngestionService_Ingest(t *testing.T) {
	dir := t.TempDir()
	store := &stubDocumentStore{}
	trigger := &stubTrigger{}
	svc := services.NewIngestionService(store, trigger, filepath.Join(dir, "uploads"))

	doc, err := svc.Ingest([]byte("%PDF-1.4 fake"), "thesis.pdf", "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, doc.Status)
	assert.Equal(t, "application/pdf", doc.FileType)
	assert.Equal(t, int64(len("%PDF-1.4 fake")), doc.FileSize)
	assert.True(t, strings.HasSuffix(doc.Filename, "_thesis.pdf"))

	entries, err := os.ReadDir(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, doc.Filename, entries[0].Name())

	data, err := os.ReadFile(doc.OriginalPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))

	require.Len(t, trigger.documentIDs, 1)
	assert.Equal(t, doc.ID, trigger.documentIDs[0])
	assert.True(t, filepath.IsAbs(trigger.filePaths[0]))
	assert.Equal(t, doc.OriginalPath, trigger.filePaths[0])
}

func TestIngestionService_SanitizesNestedName(t *testing.T) {
	dir := t.TempDir()
	svc := services.NewIngestionService(&stubDocumentStore{}, &stubTrigger{}, dir)

	doc, err := svc.Ingest([]byte("data"), "../../etc/passwd", "text/plain")
	require.NoError(t, err)

	// Only the base name survives; the file lands inside the upload dir.
	assert.True(t, strings.HasSuffix(doc.Filename, "_passwd"))
	assert.Equal(t, dir, filepath.Dir(doc.OriginalPath))
}

func TestIngestionService_StoreErrorReturned(t *testing.T) {
	dir := t.TempDir()
	trigger := &stubTrigger{}
	svc := services.NewIngestionService(&stubDocumentStore{err: errors.New("db down")}, trigger, dir)

	_, err := svc.Ingest([]byte("data"), "thesis.pdf", "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist document")

	// The pipeline must not start for a document that was never recorded.
	assert.Empty(t, trigger.documentIDs)
}

func TestIngestionService_TriggerErrorNotFatal(t *testing.T) {
	dir := t.TempDir()
	svc := services.NewIngestionService(&stubDocumentStore{}, &stubTrigger{err: errors.New("already running")}, dir)

	doc, err := svc.Ingest([]byte("data"), "thesis.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, doc.Status)
}
