package analysis_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trl-backend/internal/analysis"
)

func TestRegistry_DuplicateBeginRejected(t *testing.T) {
	registry := analysis.NewRegistry()

	require.NoError(t, registry.Begin("document:1"))

	err := registry.Begin("document:1")
	assert.ErrorIs(t, err, analysis.ErrAlreadyRunning)

	// A different key is unaffected.
	assert.NoError(t, registry.Begin("document:2"))
}

func TestRegistry_FinishAllowsRestart(t *testing.T) {
	registry := analysis.NewRegistry()

	require.NoError(t, registry.Begin("project:7"))
	registry.Finish("project:7", nil)

	state, found := registry.Get("project:7")
	require.True(t, found)
	assert.Equal(t, analysis.RunSucceeded, state.Status)
	assert.Empty(t, state.Error)
	assert.False(t, state.FinishedAt.IsZero())

	// Finished keys can be claimed again.
	assert.NoError(t, registry.Begin("project:7"))
}

func TestRegistry_FinishRecordsError(t *testing.T) {
	registry := analysis.NewRegistry()

	require.NoError(t, registry.Begin("project:7"))
	registry.Finish("project:7", errors.New("report missing"))

	state, found := registry.Get("project:7")
	require.True(t, found)
	assert.Equal(t, analysis.RunFailed, state.Status)
	assert.Equal(t, "report missing", state.Error)
}

func TestRegistry_GetUnknownKey(t *testing.T) {
	registry := analysis.NewRegistry()

	_, found := registry.Get("document:99")
	assert.False(t, found)
}
