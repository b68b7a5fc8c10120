package analysis

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// Runner executes one analysis script invocation and reports whether it
// exited cleanly, together with the combined stdout/stderr log.
type Runner interface {
	Run(script string, args ...string) (bool, string)
}

// PythonRunner invokes the analysis scripts out of process. All launch
// parameters are explicit; nothing is read from the environment here.
type PythonRunner struct {
	Executable string
	ScriptsDir string
	// Timeout bounds a single run. Zero means no bound, matching the
	// historical behavior of letting the worker run to completion.
	Timeout time.Duration
}

func NewPythonRunner(executable, scriptsDir string, timeout time.Duration) *PythonRunner {
	return &PythonRunner{
		Executable: executable,
		ScriptsDir: scriptsDir,
		Timeout:    timeout,
	}
}

// Run blocks until the script terminates. A launch failure is reported the
// same way as a non-zero exit: success=false with the reason in the log.
func (r *PythonRunner) Run(script string, args ...string) (bool, string) {
	ctx := context.Background()
	cancel := func() {}
	if r.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
	}
	defer cancel()

	scriptPath := filepath.Join(r.ScriptsDir, script)
	cmdArgs := append([]string{scriptPath}, args...)
	cmd := exec.CommandContext(ctx, r.Executable, cmdArgs...)

	// The worker may spawn subprocesses of its own. Run the whole tree in
	// its own process group and kill the group on timeout; killing only the
	// direct child would leave grandchildren holding the pipe open.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	var output strings.Builder

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		msg := fmt.Sprintf("failed to open stdout pipe: %v", err)
		log.Printf("[python] %s", msg)
		return false, msg
	}
	// Merge stderr into the stdout pipe so diagnostics arrive on one stream.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		msg := fmt.Sprintf("failed to launch %s: %v", scriptPath, err)
		log.Printf("[python] %s", msg)
		return false, msg
	}

	// Drain while the process runs so it can never block on a full pipe.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			log.Printf("[python] %s", line)
			output.WriteString(line)
			output.WriteByte('\n')
		}
		if scanErr := scanner.Err(); scanErr != nil {
			// An oversized line stops the scanner. Keep draining raw bytes
			// so the worker never blocks on a full pipe.
			log.Printf("[python] output truncated: %v", scanErr)
			output.WriteString(fmt.Sprintf("output truncated: %v\n", scanErr))
			_, _ = io.Copy(io.Discard, stdout)
		}
	}()

	// Reads must finish before Wait, which closes the pipe.
	<-drained
	err = cmd.Wait()

	if err != nil {
		log.Printf("[python] %s exited with error: %v", script, err)
		output.WriteString(fmt.Sprintf("process exited with error: %v\n", err))
		return false, output.String()
	}

	log.Printf("[python] %s finished with exit code 0", script)
	return true, output.String()
}
