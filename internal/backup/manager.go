// Package backup manages database dump artifacts stored as files in a single
// directory. The directory is the only catalog: every operation re-reads it.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hongminglow/dbgate/internal/common"
	"github.com/hongminglow/dbgate/internal/logging"
	"github.com/hongminglow/dbgate/internal/models"
)

const (
	defaultTimeout = 10 * time.Minute
	defaultWorkers = 2
)

// Manager creates, deletes, restores and lists backups.
//
// Operations on the same name are serialized. Create and Restore additionally
// hold the database lock, so at most one child process touches the live
// database at a time. Before taking any lock they must get one of the worker
// slots, which caps how many of them can be running or queued at once.
type Manager struct {
	dir     string
	runner  Runner
	log     logging.Logger
	timeout time.Duration
	pool    *semaphore.Weighted

	names *keyedMutex
	dbMu  sync.Mutex
}

type Option func(*Manager)

// WithTimeout bounds each child process. On expiry the process is killed and
// the caller gets ErrUnexpected.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithWorkers sets how many Create and Restore calls are admitted at once.
// Further callers wait for a slot until their context is done.
func WithWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.pool = semaphore.NewWeighted(int64(n))
		}
	}
}

func NewManager(dir string, runner Runner, log logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		dir:     dir,
		runner:  runner,
		log:     log,
		timeout: defaultTimeout,
		pool:    semaphore.NewWeighted(defaultWorkers),
		names:   newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create dumps the live database into a new artifact. It never overwrites an
// existing one. The dump is written next to the final path and renamed only
// after the utility exits cleanly.
func (m *Manager) Create(ctx context.Context, name string) (models.Backup, error) {
	if err := ValidateName(name); err != nil {
		return models.Backup{}, err
	}
	release, err := m.admit(ctx, "dump", name)
	if err != nil {
		return models.Backup{}, err
	}
	defer release()

	unlock := m.names.Lock(name)
	defer unlock()

	if err := m.ensureDir(); err != nil {
		return models.Backup{}, err
	}
	path := m.path(name)
	exists, err := fileExists(path)
	if err != nil {
		return models.Backup{}, fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	if exists {
		return models.Backup{}, common.ErrDuplicateBackupName
	}

	m.dbMu.Lock()
	defer m.dbMu.Unlock()

	partial := path + partialSuffix
	if err := m.exec(ctx, "dump", name, func(ctx context.Context) error {
		return m.runner.Dump(ctx, partial)
	}); err != nil {
		m.discard(ctx, partial)
		return models.Backup{}, err
	}
	if err := os.Rename(partial, path); err != nil {
		m.discard(ctx, partial)
		return models.Backup{}, fmt.Errorf("%w: publish backup: %v", common.ErrUnexpected, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return models.Backup{}, fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	return toBackup(name, path, info), nil
}

// Delete removes an artifact.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	unlock := m.names.Lock(name)
	defer unlock()

	path := m.path(name)
	exists, err := fileExists(path)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	if !exists {
		return common.ErrBackupNotFound
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: remove backup: %v", common.ErrUnexpected, err)
	}
	return nil
}

// Restore replays an artifact over the live database in clean mode. The
// artifact itself is left untouched.
func (m *Manager) Restore(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	release, err := m.admit(ctx, "restore", name)
	if err != nil {
		return err
	}
	defer release()

	unlock := m.names.Lock(name)
	defer unlock()

	path := m.path(name)
	exists, err := fileExists(path)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	if !exists {
		return common.ErrBackupNotFound
	}

	m.dbMu.Lock()
	defer m.dbMu.Unlock()

	return m.exec(ctx, "restore", name, func(ctx context.Context) error {
		return m.runner.Restore(ctx, path)
	})
}

// List returns the artifacts in the backup directory sorted by name. The
// directory is created if missing.
func (m *Manager) List(ctx context.Context) ([]models.Backup, error) {
	if err := m.ensureDir(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read backup dir: %v", common.ErrUnexpected, err)
	}

	out := make([]models.Backup, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		name := strings.TrimSuffix(e.Name(), Extension)
		out = append(out, toBackup(name, m.path(name), info))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// admit takes a worker slot. A caller whose context ends while waiting
// leaves the queue without having touched any lock.
func (m *Manager) admit(ctx context.Context, op, name string) (func(), error) {
	if err := m.pool.Acquire(ctx, 1); err != nil {
		m.log.Warn(ctx, "no backup worker available", "op", op, "backup", name, "err", err)
		return nil, fmt.Errorf("%w: wait for backup worker: %v", common.ErrUnexpected, err)
	}
	return func() { m.pool.Release(1) }, nil
}

// exec runs fn detached from request cancellation. Only the configured
// timeout can stop it.
func (m *Manager) exec(ctx context.Context, op, name string, fn func(context.Context) error) error {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	start := time.Now()
	err := fn(runCtx)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			m.log.Error(ctx, "backup child process timed out, database state needs manual inspection",
				"op", op, "backup", name, "timeout", m.timeout.String())
		}
		return fmt.Errorf("%w: %s %s: %v", common.ErrUnexpected, op, name, err)
	}
	m.log.Info(ctx, "backup child process finished", "op", op, "backup", name, "duration", time.Since(start).String())
	return nil
}

func (m *Manager) ensureDir() error {
	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return fmt.Errorf("%w: create backup dir: %v", common.ErrUnexpected, err)
	}
	return nil
}

func (m *Manager) discard(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.log.Warn(ctx, "remove partial backup", "path", path, "err", err)
	}
}

// fileExists reports whether path is a regular file. Anything else under an
// artifact name is invisible to List, so it is not an artifact here either.
func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func toBackup(name, path string, info fs.FileInfo) models.Backup {
	return models.Backup{
		Name:      name,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime().UTC(),
	}
}
