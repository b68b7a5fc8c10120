package analysis

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"trl-backend/internal/models"
)

const (
	documentScript = "analyze_main.py"
	projectScript  = "analyze_project.py"

	// Persisted on FAILED documents. The full worker log stays in the
	// server log; the row only carries this short diagnostic.
	failureMessage = "python analysis failed"
)

// DocumentStore is the slice of the database the orchestrator needs to
// drive a document through its lifecycle.
type DocumentStore interface {
	MarkDocumentProcessing(id int, startedAt time.Time) error
	CompleteDocument(id int, completedAt time.Time) error
	FailDocument(id int, errorMessage string, completedAt time.Time) error
}

// ReportArchiver persists the report file a successful project run leaves
// on disk.
type ReportArchiver interface {
	ArchiveFromFile(projectID int, path string) (*models.ProjectReport, error)
}

// EventPublisher surfaces lifecycle transitions to interested clients. A
// nil publisher disables events.
type EventPublisher interface {
	PublishDocumentEvent(documentID int, event string, payload map[string]interface{}) error
	PublishProjectEvent(projectID int, event string, payload map[string]interface{}) error
}

// Orchestrator owns the analysis lifecycle: it spawns one background unit
// per trigger, lets the runner block that unit until the worker exits, and
// applies exactly one terminal update per run.
type Orchestrator struct {
	runner     Runner
	store      DocumentStore
	archiver   ReportArchiver
	events     EventPublisher
	registry   *Registry
	reportsDir string
}

func NewOrchestrator(runner Runner, store DocumentStore, archiver ReportArchiver, events EventPublisher, reportsDir string) *Orchestrator {
	return &Orchestrator{
		runner:     runner,
		store:      store,
		archiver:   archiver,
		events:     events,
		registry:   NewRegistry(),
		reportsDir: reportsDir,
	}
}

func DocumentKey(documentID int) string {
	return fmt.Sprintf("document:%d", documentID)
}

func ProjectKey(projectID int) string {
	return fmt.Sprintf("project:%d", projectID)
}

// RunState exposes the registry state for a key, for status polling.
func (o *Orchestrator) RunState(key string) (RunState, bool) {
	return o.registry.Get(key)
}

// TriggerDocumentAnalysis starts a detached analysis run for one document.
// It returns once the run is registered; the caller observes the outcome by
// polling the document. ErrAlreadyRunning is returned for duplicate
// triggers while a run for the same document is in flight.
func (o *Orchestrator) TriggerDocumentAnalysis(documentID int, filePath string) error {
	key := DocumentKey(documentID)
	if err := o.registry.Begin(key); err != nil {
		return err
	}

	go o.runDocumentAnalysis(key, documentID, filePath)
	return nil
}

func (o *Orchestrator) runDocumentAnalysis(key string, documentID int, filePath string) {
	log.Printf("Starting analysis for document %d (%s)", documentID, filePath)
	o.publishDocumentEvent(documentID, "analysis_started", map[string]interface{}{
		"document_id": documentID,
		"status":      models.StatusProcessing,
	})

	if err := o.store.MarkDocumentProcessing(documentID, time.Now()); err != nil {
		log.Printf("Could not mark document %d as processing: %v", documentID, err)
		o.registry.Finish(key, err)
		return
	}

	ok, _ := o.runner.Run(documentScript,
		"--file", filePath,
		"--doc_id", strconv.Itoa(documentID),
	)

	if !ok {
		if err := o.store.FailDocument(documentID, failureMessage, time.Now()); err != nil {
			log.Printf("Could not mark document %d as failed: %v", documentID, err)
		}
		o.registry.Finish(key, errors.New(failureMessage))
		o.publishDocumentEvent(documentID, "analysis_failed", map[string]interface{}{
			"document_id": documentID,
			"status":      models.StatusFailed,
			"error":       failureMessage,
		})
		return
	}

	if err := o.store.CompleteDocument(documentID, time.Now()); err != nil {
		log.Printf("Could not mark document %d as completed: %v", documentID, err)
		o.registry.Finish(key, err)
		return
	}

	o.registry.Finish(key, nil)
	o.publishDocumentEvent(documentID, "analysis_completed", map[string]interface{}{
		"document_id": documentID,
		"status":      models.StatusCompleted,
	})
}

// TriggerProjectAnalysis starts a detached project-level run. On worker
// success the conventional report file must exist and be archived; a
// missing report turns the whole run into a failure.
func (o *Orchestrator) TriggerProjectAnalysis(projectID int) error {
	key := ProjectKey(projectID)
	if err := o.registry.Begin(key); err != nil {
		return err
	}

	go o.runProjectAnalysis(key, projectID)
	return nil
}

func (o *Orchestrator) runProjectAnalysis(key string, projectID int) {
	log.Printf("Starting project analysis for project %d", projectID)
	o.publishProjectEvent(projectID, "analysis_started", map[string]interface{}{
		"project_id": projectID,
	})

	ok, _ := o.runner.Run(projectScript,
		"--project_id", strconv.Itoa(projectID),
	)

	if !ok {
		o.registry.Finish(key, errors.New(failureMessage))
		o.publishProjectEvent(projectID, "analysis_failed", map[string]interface{}{
			"project_id": projectID,
			"error":      failureMessage,
		})
		return
	}

	// The worker leaves the report at a conventional path keyed by project
	// id. Archiving it is part of the run: success without a report is a
	// failure, not a quiet pass.
	reportPath := filepath.Join(o.reportsDir, fmt.Sprintf("analisis_proyecto_%d.pdf", projectID))
	report, err := o.archiver.ArchiveFromFile(projectID, reportPath)
	if err != nil {
		wrapped := fmt.Errorf("analysis succeeded but report archiving failed: %w", err)
		log.Printf("Project %d: %v", projectID, wrapped)
		o.registry.Finish(key, wrapped)
		o.publishProjectEvent(projectID, "analysis_failed", map[string]interface{}{
			"project_id": projectID,
			"error":      wrapped.Error(),
		})
		return
	}

	o.registry.Finish(key, nil)
	o.publishProjectEvent(projectID, "analysis_completed", map[string]interface{}{
		"project_id": projectID,
		"report_id":  report.ID,
	})
}

func (o *Orchestrator) publishDocumentEvent(documentID int, event string, payload map[string]interface{}) {
	if o.events == nil {
		return
	}
	if err := o.events.PublishDocumentEvent(documentID, event, payload); err != nil {
		log.Printf("Failed to publish %s for document %d: %v", event, documentID, err)
	}
}

func (o *Orchestrator) publishProjectEvent(projectID int, event string, payload map[string]interface{}) {
	if o.events == nil {
		return
	}
	if err := o.events.PublishProjectEvent(projectID, event, payload); err != nil {
		log.Printf("Failed to publish %s for project %d: %v", event, projectID, err)
	}
}
