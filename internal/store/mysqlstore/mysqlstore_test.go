package mysqlstore

import (
	"context"
	"testing"
	"time"

	"chaintrack/internal/domain"
	apperrors "chaintrack/internal/errors"
	"chaintrack/internal/testutil"

	"go.uber.org/zap"
)

func TestLockSecondsRoundsUp(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want int
	}{
		{0, 0},
		{500 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{2 * time.Second, 2},
	}
	for _, c := range cases {
		if got := lockSeconds(c.in); got != c.want {
			t.Errorf("lockSeconds(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMySQLStoreRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	s := New(db, 2*time.Second, zap.NewNop())
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []domain.ProductRecord{
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
			ProductID: "widget-1",
			Name:      "Widget",
			BatchID:   "B-100",
			Creator:   "producer1",
			Price:     2.00,
			Quantity:  4,
			Status:    domain.StatusShipped,
			Owner:     "supplier1",
			TxRef:     "0xabc",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	err := s.Update(ctx, func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		return append(records, seed...), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(seed) {
		t.Fatalf("expected %d records, got %d", len(seed), len(got))
	}
	// Insertion order must survive the round trip.
	for i := range seed {
		if got[i].RecordID != seed[i].RecordID {
			t.Errorf("record %d: expected id %s, got %s", i, seed[i].RecordID, got[i].RecordID)
		}
		if got[i].Quantity != seed[i].Quantity || got[i].Status != seed[i].Status || got[i].Owner != seed[i].Owner {
			t.Errorf("record %d changed across round-trip:\n got %+v\nwant %+v", i, got[i], seed[i])
		}
	}
}

func TestMySQLStoreFnErrorWritesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	s := New(db, 2*time.Second, zap.NewNop())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	err := s.Update(ctx, func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		return append(records, domain.ProductRecord{
			RecordID: "rec-1", ProductID: "widget-1", Name: "Widget", Creator: "producer1",
			Status: domain.StatusDraft, Quantity: 5, CreatedAt: now, UpdatedAt: now,
		}), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = s.Update(ctx, func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		return nil, apperrors.NewDuplicateRecordError("widget-1", "producer1")
	})
	if _, ok := apperrors.IsDuplicateRecordError(err); !ok {
		t.Fatalf("expected fn error to pass through, got %v", err)
	}

	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].RecordID != "rec-1" {
		t.Fatalf("aborted update changed the persisted snapshot: %+v", got)
	}
}
