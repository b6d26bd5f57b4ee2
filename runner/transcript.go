// Package runner executes external commands and keeps the durable install
// transcript their output is appended to.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/vasup/utils"
)

// Transcript is the append-mode, human-readable log every executed command
// writes into. Failure classification scans the accumulated text, not just
// the last command's output, so the whole file is kept reachable through
// Contents.
type Transcript struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenTranscript opens (or creates) the transcript at path and, when alias
// is non-empty, points a well-known symlink at it for discoverability. A
// pre-existing regular file at the alias is rotated to a .bak suffix first;
// alias failures degrade to a warning.
func OpenTranscript(ctx context.Context, path, alias string) (*Transcript, error) {
	if err := utils.EnsureDirs(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // vasup-managed path
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}

	if alias != "" && alias != path {
		if err := ensureAlias(path, alias); err != nil {
			log.WithFunc("runner.OpenTranscript").Warnf(ctx, "transcript alias %s: %v", alias, err)
		}
	}
	return &Transcript{path: path, f: f}, nil
}

// ensureAlias makes alias a symlink to target, rotating any regular file
// found in the way.
func ensureAlias(target, alias string) error {
	info, err := os.Lstat(alias)
	switch {
	case os.IsNotExist(err):
		// nothing in the way
	case err != nil:
		return err
	case info.Mode()&os.ModeSymlink != 0:
		current, readErr := os.Readlink(alias)
		if readErr == nil && current == target {
			return nil
		}
		if err := os.Remove(alias); err != nil {
			return err
		}
	default:
		if err := os.Rename(alias, alias+".bak"); err != nil {
			return fmt.Errorf("rotate existing %s: %w", alias, err)
		}
	}
	return os.Symlink(target, alias)
}

// Write appends p to the transcript.
func (t *Transcript) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.f.Write(p)
}

// Printf appends a formatted line to the transcript.
func (t *Transcript) Printf(format string, args ...any) {
	fmt.Fprintf(t, format+"\n", args...)
}

// Contents returns the accumulated transcript text.
func (t *Transcript) Contents() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.f.Sync(); err != nil {
		return "", fmt.Errorf("sync transcript: %w", err)
	}
	data, err := os.ReadFile(t.path) //nolint:gosec // vasup-managed path
	if err != nil {
		return "", fmt.Errorf("read transcript %s: %w", t.path, err)
	}
	return string(data), nil
}

// Path returns the transcript file path.
func (t *Transcript) Path() string { return t.path }

// Close flushes and closes the underlying file.
func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.f.Close()
}
