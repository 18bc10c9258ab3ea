// Package filestore persists the record collection as a single JSON file,
// the direct descendant of the application's original flat-file database.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chaintrack/internal/domain"
	apperrors "chaintrack/internal/errors"
	"chaintrack/internal/store"

	"go.uber.org/zap"
)

type FileStore struct {
	path        string
	lockTimeout time.Duration
	lock        chan struct{}
	logger      *zap.Logger
}

func New(path string, lockTimeout time.Duration, logger *zap.Logger) *FileStore {
	fs := &FileStore{
		path:        path,
		lockTimeout: lockTimeout,
		lock:        make(chan struct{}, 1),
		logger:      logger,
	}
	fs.lock <- struct{}{}
	return fs
}

// acquire takes the exclusive lock with a bounded wait. A sync.Mutex
// cannot express the timeout, so the lock is a one-slot channel.
func (fs *FileStore) acquire(ctx context.Context) error {
	timer := time.NewTimer(fs.lockTimeout)
	defer timer.Stop()

	select {
	case <-fs.lock:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return apperrors.NewStorageBusyError(fs.lockTimeout)
	}
}

func (fs *FileStore) release() {
	fs.lock <- struct{}{}
}

func (fs *FileStore) LoadAll(ctx context.Context) ([]domain.ProductRecord, error) {
	if err := fs.acquire(ctx); err != nil {
		return nil, err
	}
	defer fs.release()

	return fs.loadLocked()
}

func (fs *FileStore) Update(ctx context.Context, fn func([]domain.ProductRecord) ([]domain.ProductRecord, error)) error {
	if err := fs.acquire(ctx); err != nil {
		return err
	}
	defer fs.release()

	records, err := fs.loadLocked()
	if err != nil {
		return err
	}

	next, err := fn(records)
	if err != nil {
		return err
	}

	if err := fs.saveLocked(next); err != nil {
		return err
	}

	fs.logger.Debug("snapshot persisted", zap.Int("records", len(next)))
	return nil
}

func (fs *FileStore) loadLocked() ([]domain.ProductRecord, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		// No file yet means an empty ledger, not an unreadable one.
		return []domain.ProductRecord{}, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError(fmt.Errorf("reading %s: %w", fs.path, err))
	}

	if len(data) == 0 {
		return []domain.ProductRecord{}, nil
	}

	var records []domain.ProductRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.NewStorageUnavailableError(fmt.Errorf("parsing %s: %w", fs.path, err))
	}

	return store.Normalize(records), nil
}

// saveLocked writes the snapshot to a temp file in the same directory and
// renames it over the data file, so readers never observe a torn write.
func (fs *FileStore) saveLocked(records []domain.ProductRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return apperrors.NewStorageWriteFailedError(fmt.Errorf("encoding snapshot: %w", err))
	}

	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return apperrors.NewStorageWriteFailedError(fmt.Errorf("creating temp file: %w", err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewStorageWriteFailedError(fmt.Errorf("writing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageWriteFailedError(fmt.Errorf("closing temp file: %w", err))
	}

	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageWriteFailedError(fmt.Errorf("replacing %s: %w", fs.path, err))
	}

	return nil
}
