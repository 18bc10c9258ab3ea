package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chaintrack/internal/domain"
	apperrors "chaintrack/internal/errors"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T, lockTimeout time.Duration) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	return New(path, lockTimeout, zap.NewNop()), path
}

func seedRecords() []domain.ProductRecord {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []domain.ProductRecord{
		{
			RecordID:  "rec-1",
			ProductID: "widget-1",
			Name:      "Widget",
			BatchID:   "B-100",
			Creator:   "producer1",
			Price:     2.00,
			Quantity:  10,
			Status:    domain.StatusApproved,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			RecordID:  "rec-2",
			ProductID: "gadget-2",
			Name:      "Gadget",
			BatchID:   "B-200",
			Creator:   "producer2",
			Price:     5.50,
			Quantity:  3,
			Status:    domain.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func TestLoadAllMissingFileIsEmptyLedger(t *testing.T) {
	fs, _ := newTestStore(t, time.Second)

	records, err := fs.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty snapshot, got %d records", len(records))
	}
}

func TestLoadAllCorruptFileIsUnavailable(t *testing.T) {
	fs, path := newTestStore(t, time.Second)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := fs.LoadAll(context.Background())
	if _, ok := apperrors.IsStorageUnavailableError(err); !ok {
		t.Fatalf("expected StorageUnavailableError, got %v", err)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	fs, _ := newTestStore(t, time.Second)
	seed := seedRecords()

	err := fs.Update(context.Background(), func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		return append(records, seed...), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := fs.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(seed) {
		t.Fatalf("expected %d records, got %d", len(seed), len(got))
	}
	for i := range seed {
		if got[i] != seed[i] {
			t.Errorf("record %d changed across round-trip:\n got %+v\nwant %+v", i, got[i], seed[i])
		}
	}
}

func TestIdentityUpdateIsNoOp(t *testing.T) {
	fs, path := newTestStore(t, time.Second)

	err := fs.Update(context.Background(), func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		return append(records, seedRecords()...), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// saveAll(loadAll()) must not change the persisted content.
	err = fs.Update(context.Background(), func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		return records, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("identity update changed the persisted snapshot")
	}
}

func TestUpdateFnErrorWritesNothing(t *testing.T) {
	fs, path := newTestStore(t, time.Second)

	err := fs.Update(context.Background(), func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		return append(records, seedRecords()...), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, _ := os.ReadFile(path)

	wantErr := apperrors.NewRecordNotFoundError("widget-1", "producer1")
	err = fs.Update(context.Background(), func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		return nil, wantErr
	})
	if _, ok := apperrors.IsRecordNotFoundError(err); !ok {
		t.Fatalf("expected fn error to pass through, got %v", err)
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("aborted update changed the persisted snapshot")
	}
}

func TestUpdateLockTimeoutIsBusy(t *testing.T) {
	fs, _ := newTestStore(t, 50*time.Millisecond)

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- fs.Update(context.Background(), func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
			close(holding)
			<-release
			return records, nil
		})
	}()

	<-holding
	err := fs.Update(context.Background(), func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		return records, nil
	})
	close(release)

	if _, ok := apperrors.IsStorageBusyError(err); !ok {
		t.Fatalf("expected StorageBusyError while the lock is held, got %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("holder update failed: %v", err)
	}
}

func TestLoadAllAppliesLegacyDefaults(t *testing.T) {
	fs, path := newTestStore(t, time.Second)

	// A legacy row: no recordId, no status, no quantity, stale owner on a
	// pre-transfer record.
	legacy := `[{"productId":"widget-1","name":"Widget","creator":"producer1","owner":"ghost"}]`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := fs.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.RecordID == "" {
		t.Error("expected a record id to be assigned")
	}
	if r.Status != domain.StatusDraft {
		t.Errorf("expected missing status to default to draft, got %s", r.Status)
	}
	if r.Quantity != 0 {
		t.Errorf("expected missing quantity to default to 0, got %d", r.Quantity)
	}
	if r.Owner != "" {
		t.Errorf("expected owner cleared on a pre-transfer record, got %q", r.Owner)
	}
}
