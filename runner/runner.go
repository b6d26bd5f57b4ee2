package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/projecteru2/core/log"
)

// Executor runs an external command and reports its exit status. A non-zero
// exit is returned as a code, not an error; callers decide whether it is
// fatal. The returned error covers only failure to run the command at all
// (binary missing, context cancelled before start).
type Executor interface {
	Run(ctx context.Context, desc string, name string, args ...string) (int, error)
}

var _ Executor = (*Exec)(nil)

// Exec shells out with combined stdout+stderr streamed to the transcript.
type Exec struct {
	tr *Transcript
}

// New creates an Exec writing into tr.
func New(tr *Transcript) *Exec {
	return &Exec{tr: tr}
}

// Run executes name with args, appending a header plus all combined output
// to the transcript.
func (e *Exec) Run(ctx context.Context, desc string, name string, args ...string) (int, error) {
	logger := log.WithFunc("runner.Run")
	logger.Infof(ctx, "%s: %s %v", desc, name, args)

	e.tr.Printf("=== %s | %s | %s %v", time.Now().Format(time.RFC3339), desc, name, args)

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // commands come from vasup config
	cmd.Stdout = e.tr
	cmd.Stderr = e.tr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		e.tr.Printf("=== exit status %d", code)
		logger.Warnf(ctx, "%s exited with status %d", desc, code)
		return code, nil
	}

	e.tr.Printf("=== failed to run: %v", err)
	return 0, fmt.Errorf("run %s: %w", desc, err)
}

// LookPath reports whether binary resolves on PATH. Optional collaborators
// (grubby, the feed sync tool) are probed with this before use.
func LookPath(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}
