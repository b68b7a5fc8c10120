package analysis_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trl-backend/internal/analysis"
	"trl-backend/internal/models"
)

type stubRunner struct {
	mu      sync.Mutex
	calls   [][]string
	succeed bool
	output  string
	block   chan struct{}
}

func (r *stubRunner) Run(script string, args ...string) (bool, string) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{script}, args...))
	r.mu.Unlock()
	if r.block != nil {
		<-r.block
	}
	return r.succeed, r.output
}

func (r *stubRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type docState struct {
	status      string
	errMsg      string
	startedAt   time.Time
	completedAt time.Time
	writes      int
}

type memoryStore struct {
	mu   sync.Mutex
	docs map[int]*docState
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[int]*docState)}
}

func (s *memoryStore) get(id int) *docState {
	if _, ok := s.docs[id]; !ok {
		s.docs[id] = &docState{status: models.StatusPending}
	}
	return s.docs[id]
}

func (s *memoryStore) terminal(d *docState) bool {
	return d.status == models.StatusCompleted || d.status == models.StatusFailed
}

func (s *memoryStore) MarkDocumentProcessing(id int, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(id)
	if s.terminal(d) {
		return errors.New("document already in a terminal state")
	}
	d.status = models.StatusProcessing
	d.startedAt = startedAt
	d.writes++
	return nil
}

func (s *memoryStore) CompleteDocument(id int, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(id)
	if s.terminal(d) {
		return errors.New("document already in a terminal state")
	}
	d.status = models.StatusCompleted
	d.completedAt = completedAt
	d.errMsg = ""
	d.writes++
	return nil
}

func (s *memoryStore) FailDocument(id int, errorMessage string, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(id)
	if s.terminal(d) {
		return errors.New("document already in a terminal state")
	}
	d.status = models.StatusFailed
	d.errMsg = errorMessage
	d.completedAt = completedAt
	d.writes++
	return nil
}

func (s *memoryStore) snapshot(id int) docState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.get(id)
}

type stubArchiver struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (a *stubArchiver) ArchiveFromFile(projectID int, path string) (*models.ProjectReport, error) {
	a.mu.Lock()
	a.paths = append(a.paths, path)
	a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	return &models.ProjectReport{
		ID:        1,
		ProjectID: projectID,
		Filename:  filepath.Base(path),
	}, nil
}

func (a *stubArchiver) archivedPaths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.paths...)
}

func waitForRun(t *testing.T, o *analysis.Orchestrator, key string) analysis.RunState {
	t.Helper()
	var state analysis.RunState
	require.Eventually(t, func() bool {
		s, found := o.RunState(key)
		if !found || s.Status == analysis.RunRunning {
			return false
		}
		state = s
		return true
	}, 2*time.Second, 10*time.Millisecond)
	return state
}

func TestOrchestrator_DocumentSuccess(t *testing.T) {
	runner := &stubRunner{succeed: true, output: "line one\nline two\n"}
	store := newMemoryStore()
	o := analysis.NewOrchestrator(runner, store, &stubArchiver{}, nil, "storage/analysis")

	require.NoError(t, o.TriggerDocumentAnalysis(1, "/uploads/thesis.pdf"))

	state := waitForRun(t, o, analysis.DocumentKey(1))
	assert.Equal(t, analysis.RunSucceeded, state.Status)

	doc := store.snapshot(1)
	assert.Equal(t, models.StatusCompleted, doc.status)
	assert.False(t, doc.completedAt.IsZero())
	assert.Empty(t, doc.errMsg)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"analyze_main.py", "--file", "/uploads/thesis.pdf", "--doc_id", "1"}, runner.calls[0])
}

func TestOrchestrator_DocumentFailure(t *testing.T) {
	runner := &stubRunner{succeed: false, output: "traceback\n"}
	store := newMemoryStore()
	o := analysis.NewOrchestrator(runner, store, &stubArchiver{}, nil, "storage/analysis")

	require.NoError(t, o.TriggerDocumentAnalysis(2, "/uploads/broken.pdf"))

	state := waitForRun(t, o, analysis.DocumentKey(2))
	assert.Equal(t, analysis.RunFailed, state.Status)
	assert.NotEmpty(t, state.Error)

	doc := store.snapshot(2)
	assert.Equal(t, models.StatusFailed, doc.status)
	assert.NotEmpty(t, doc.errMsg)
	assert.False(t, doc.completedAt.IsZero())
}

func TestOrchestrator_DocumentTerminalStateStable(t *testing.T) {
	runner := &stubRunner{succeed: true}
	store := newMemoryStore()
	o := analysis.NewOrchestrator(runner, store, &stubArchiver{}, nil, "storage/analysis")

	require.NoError(t, o.TriggerDocumentAnalysis(3, "/uploads/a.pdf"))
	waitForRun(t, o, analysis.DocumentKey(3))

	first := store.snapshot(3)

	// Re-reading later must observe the exact same terminal state: one
	// processing write plus one terminal write, nothing after.
	time.Sleep(50 * time.Millisecond)
	second := store.snapshot(3)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, second.writes)
}

func TestOrchestrator_DuplicateTriggerRejected(t *testing.T) {
	runner := &stubRunner{succeed: true, block: make(chan struct{})}
	store := newMemoryStore()
	o := analysis.NewOrchestrator(runner, store, &stubArchiver{}, nil, "storage/analysis")

	require.NoError(t, o.TriggerDocumentAnalysis(4, "/uploads/a.pdf"))

	err := o.TriggerDocumentAnalysis(4, "/uploads/a.pdf")
	assert.ErrorIs(t, err, analysis.ErrAlreadyRunning)

	close(runner.block)
	waitForRun(t, o, analysis.DocumentKey(4))

	// Exactly one worker invocation despite two triggers.
	assert.Equal(t, 1, runner.callCount())

	// Once finished, a new trigger is accepted again.
	assert.NoError(t, o.TriggerDocumentAnalysis(4, "/uploads/a.pdf"))
}

func TestOrchestrator_ProjectSuccessArchivesReport(t *testing.T) {
	runner := &stubRunner{succeed: true}
	archiver := &stubArchiver{}
	o := analysis.NewOrchestrator(runner, newMemoryStore(), archiver, nil, "storage/analysis")

	require.NoError(t, o.TriggerProjectAnalysis(7))

	state := waitForRun(t, o, analysis.ProjectKey(7))
	assert.Equal(t, analysis.RunSucceeded, state.Status)

	paths := archiver.archivedPaths()
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join("storage/analysis", "analisis_proyecto_7.pdf"), paths[0])

	runner.mu.Lock()
	defer runner.mu.Unlock()
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"analyze_project.py", "--project_id", "7"}, runner.calls[0])
}

func TestOrchestrator_ProjectMissingReportIsFailure(t *testing.T) {
	runner := &stubRunner{succeed: true}
	archiver := &stubArchiver{err: errors.New("failed to read report file")}
	o := analysis.NewOrchestrator(runner, newMemoryStore(), archiver, nil, "storage/analysis")

	require.NoError(t, o.TriggerProjectAnalysis(8))

	// The worker reported success, but without a report the run must not
	// end up successful.
	state := waitForRun(t, o, analysis.ProjectKey(8))
	assert.Equal(t, analysis.RunFailed, state.Status)
	assert.Contains(t, state.Error, "report archiving failed")
}

func TestOrchestrator_ProjectWorkerFailureSkipsArchiving(t *testing.T) {
	runner := &stubRunner{succeed: false}
	archiver := &stubArchiver{}
	o := analysis.NewOrchestrator(runner, newMemoryStore(), archiver, nil, "storage/analysis")

	require.NoError(t, o.TriggerProjectAnalysis(9))

	state := waitForRun(t, o, analysis.ProjectKey(9))
	assert.Equal(t, analysis.RunFailed, state.Status)
	assert.Empty(t, archiver.archivedPaths())
}
