// Package store defines the record store contract shared by the file and
// MySQL backends. There is no partial-record update: every mutation is
// "load full snapshot, compute new snapshot, save full snapshot", executed
// under the store's exclusive lock so concurrent ledger operations
// serialize instead of overwriting each other.
package store

import (
	"context"

	"chaintrack/internal/domain"

	"github.com/google/uuid"
)

// RecordStore is the persistence contract for the inventory ledger.
type RecordStore interface {
	// LoadAll returns the current persisted snapshot in insertion order.
	// A missing backing file/table is an empty ledger; an unreadable one
	// yields a StorageUnavailableError.
	LoadAll(ctx context.Context) ([]domain.ProductRecord, error)

	// Update runs fn inside the store's critical section: exclusive lock
	// (bounded wait, StorageBusyError on timeout), load, fn, save.
	// The snapshot returned by fn replaces the persisted collection
	// atomically; a write error yields a StorageWriteFailedError and
	// leaves the previous snapshot in place. An error from fn aborts the
	// update without writing and is returned unchanged.
	Update(ctx context.Context, fn func(records []domain.ProductRecord) ([]domain.ProductRecord, error)) error
}

// Normalize applies the safe defaults for absent or legacy fields: an
// empty status becomes draft, transferred-status records keep their owner
// while pre-transfer owners are cleared, negative quantities clamp to
// zero, and records persisted before ids existed get one assigned.
func Normalize(records []domain.ProductRecord) []domain.ProductRecord {
	for i := range records {
		r := &records[i]
		if r.RecordID == "" {
			r.RecordID = uuid.New().String()
		}
		if !r.Status.Valid() {
			r.Status = domain.StatusDraft
		}
		if !r.Status.Transferred() {
			r.Owner = ""
		}
		if r.Quantity < 0 {
			r.Quantity = 0
		}
	}
	return records
}
