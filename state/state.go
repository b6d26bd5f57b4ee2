// Package state persists the installation phase record. The record is the
// sole source of truth for resumption after the SELinux-disable reboot, so
// writes are atomic and guarded by a file lock against a second installer
// invocation on the same host.
package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/vasup/lock"
	"github.com/projecteru2/vasup/types"
	"github.com/projecteru2/vasup/utils"
)

// Store loads and saves the phase record.
//
// Load never fails the caller: a missing, unreadable, or unrecognizable
// record yields a fresh record at PhaseStart. Defaulting is the only error
// policy on the read side.
type Store interface {
	Load(ctx context.Context) types.StateRecord
	Save(ctx context.Context, rec types.StateRecord) error
}

var _ Store = (*FileStore)(nil)

// FileStore keeps the record as a JSON file, rewritten in full on every save.
type FileStore struct {
	lk       lock.Locker
	lockPath string
	path     string
}

// NewFileStore creates a FileStore with its flock at lockPath.
func NewFileStore(lockPath, filePath string) *FileStore {
	return &FileStore{lk: lock.NewFile(lockPath), lockPath: lockPath, path: filePath}
}

// Load reads the persisted record, defaulting to PhaseStart on any problem.
func (s *FileStore) Load(ctx context.Context) types.StateRecord {
	logger := log.WithFunc("state.Load")
	fresh := types.StateRecord{Phase: types.PhaseStart}

	var rec types.StateRecord
	err := lock.WithLock(ctx, s.lk, func() error {
		raw, err := os.ReadFile(s.path) //nolint:gosec // vasup-managed path
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warnf(ctx, "read state %s: %v, starting fresh", s.path, err)
			}
			rec = fresh
			return nil
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warnf(ctx, "parse state %s: %v, starting fresh", s.path, err)
			rec = fresh
			return nil
		}
		if !rec.Phase.Valid() {
			logger.Warnf(ctx, "state %s holds unknown phase %q, starting fresh", s.path, rec.Phase)
			rec = fresh
		}
		return nil
	})
	if err != nil {
		logger.Warnf(ctx, "lock state %s: %v, starting fresh", s.path, err)
		return fresh
	}
	return rec
}

// Save overwrites the record atomically, creating parent directories if
// absent. Last write wins.
func (s *FileStore) Save(ctx context.Context, rec types.StateRecord) error {
	// The flock file lives next to the record; both parents must exist
	// before the lock can be taken.
	if err := utils.EnsureDirs(filepath.Dir(s.path), filepath.Dir(s.lockPath)); err != nil {
		return err
	}
	return lock.WithLock(ctx, s.lk, func() error {
		return utils.AtomicWriteJSON(s.path, rec)
	})
}
