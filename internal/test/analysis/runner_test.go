package analysis_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trl-backend/internal/analysis"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755)
	require.NoError(t, err)
}

func TestPythonRunner_Success(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "ok.sh", "echo first line\necho second line >&2\nexit 0\n")

	runner := analysis.NewPythonRunner("/bin/sh", dir, 0)
	ok, output := runner.Run("ok.sh", "--file", "/tmp/whatever.pdf", "--doc_id", "1")

	assert.True(t, ok)
	assert.Contains(t, output, "first line")
	// stderr is merged into the same stream
	assert.Contains(t, output, "second line")
}

func TestPythonRunner_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "fail.sh", "echo something went wrong\nexit 3\n")

	runner := analysis.NewPythonRunner("/bin/sh", dir, 0)
	ok, output := runner.Run("fail.sh")

	assert.False(t, ok)
	assert.Contains(t, output, "something went wrong")
	assert.Contains(t, output, "process exited with error")
}

func TestPythonRunner_LaunchFailure(t *testing.T) {
	runner := analysis.NewPythonRunner("/nonexistent/python", t.TempDir(), 0)
	ok, output := runner.Run("analyze_main.py")

	assert.False(t, ok)
	assert.Contains(t, output, "failed to launch")
}

func TestPythonRunner_OversizedLine(t *testing.T) {
	dir := t.TempDir()
	// One 2MB line, beyond the scanner's buffer cap, then a clean exit. The
	// run must still finish promptly and report success.
	writeScript(t, dir, "big.sh", "head -c 2097152 /dev/zero | tr '\\0' x\necho\necho after truncation\nexit 0\n")

	runner := analysis.NewPythonRunner("/bin/sh", dir, 0)

	start := time.Now()
	ok, output := runner.Run("big.sh")

	assert.True(t, ok)
	assert.Contains(t, output, "output truncated")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestPythonRunner_Timeout(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "slow.sh", "sleep 10\n")

	runner := analysis.NewPythonRunner("/bin/sh", dir, 200*time.Millisecond)

	start := time.Now()
	ok, _ := runner.Run("slow.sh")

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second)
}
