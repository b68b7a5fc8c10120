package analysis

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned when a trigger targets a document or
// project that already has an analysis in flight.
var ErrAlreadyRunning = errors.New("analysis already in progress")

const (
	RunRunning   = "RUNNING"
	RunSucceeded = "SUCCEEDED"
	RunFailed    = "FAILED"
)

// RunState is the last observed state of one analysis run, keyed by
// "document:<id>" or "project:<id>".
type RunState struct {
	Key        string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Registry tracks in-flight and completed runs so duplicate triggers for
// the same key are rejected instead of racing on the same row.
type Registry struct {
	mu   sync.Mutex
	runs map[string]*RunState
}

func NewRegistry() *Registry {
	return &Registry{runs: make(map[string]*RunState)}
}

// Begin claims the key. It fails with ErrAlreadyRunning while a previous
// run for the same key has not finished.
func (r *Registry) Begin(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.runs[key]; ok && state.Status == RunRunning {
		return fmt.Errorf("%s: %w", key, ErrAlreadyRunning)
	}

	r.runs[key] = &RunState{
		Key:       key,
		Status:    RunRunning,
		StartedAt: time.Now(),
	}
	return nil
}

// Finish records the terminal outcome for the key.
func (r *Registry) Finish(key string, runErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.runs[key]
	if !ok {
		return
	}

	state.FinishedAt = time.Now()
	if runErr != nil {
		state.Status = RunFailed
		state.Error = runErr.Error()
	} else {
		state.Status = RunSucceeded
	}
}

// Get returns a copy of the last run state for the key.
func (r *Registry) Get(key string) (RunState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.runs[key]
	if !ok {
		return RunState{}, false
	}
	return *state, true
}
