package bridge

import (
	"context"
	"testing"

	apperrors "chaintrack/internal/errors"

	"go.uber.org/zap"
)

type mockLedger struct {
	MarkApprovedFunc     func(ctx context.Context, productID, creator, txRef, correlationID string) error
	ConfirmDeliveredFunc func(ctx context.Context, productID, owner, txRef string) error
}

func (m *mockLedger) MarkApproved(ctx context.Context, productID, creator, txRef, correlationID string) error {
	return m.MarkApprovedFunc(ctx, productID, creator, txRef, correlationID)
}

func (m *mockLedger) ConfirmDelivered(ctx context.Context, productID, owner, txRef string) error {
	return m.ConfirmDeliveredFunc(ctx, productID, owner, txRef)
}

func TestReconcileApprovalPassesRefsThrough(t *testing.T) {
	var gotTxRef, gotCorrID string
	ledger := &mockLedger{
		MarkApprovedFunc: func(_ context.Context, productID, creator, txRef, correlationID string) error {
			gotTxRef, gotCorrID = txRef, correlationID
			return nil
		},
	}
	b := New(ledger, zap.NewNop())

	err := b.ReconcileApproval(context.Background(), "widget-1", "producer1", "0xabc", "corr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTxRef != "0xabc" || gotCorrID != "corr-1" {
		t.Errorf("expected refs forwarded, got %q/%q", gotTxRef, gotCorrID)
	}
}

func TestReconcileApprovalWrapsDivergence(t *testing.T) {
	ledger := &mockLedger{
		MarkApprovedFunc: func(_ context.Context, productID, creator, txRef, correlationID string) error {
			return apperrors.NewInvalidTransitionError(productID, creator, "approved", "approve")
		},
	}
	b := New(ledger, zap.NewNop())

	err := b.ReconcileApproval(context.Background(), "widget-1", "producer1", "0xabc", "corr-1")

	re, ok := apperrors.IsReconciliationFailedError(err)
	if !ok {
		t.Fatalf("expected ReconciliationFailedError, got %v", err)
	}
	if re.ProductID != "widget-1" || re.Actor != "producer1" || re.TxRef != "0xabc" {
		t.Errorf("expected full divergence context, got %+v", re)
	}
	if _, ok := apperrors.IsInvalidTransitionError(err); !ok {
		t.Error("expected the underlying cause to stay reachable")
	}
}

func TestReconcileDeliveryWrapsDivergence(t *testing.T) {
	ledger := &mockLedger{
		ConfirmDeliveredFunc: func(_ context.Context, productID, owner, txRef string) error {
			return apperrors.NewRecordNotFoundError(productID, owner)
		},
	}
	b := New(ledger, zap.NewNop())

	err := b.ReconcileDelivery(context.Background(), "widget-1", "consumer1", "0xcafe")
	if _, ok := apperrors.IsReconciliationFailedError(err); !ok {
		t.Fatalf("expected ReconciliationFailedError, got %v", err)
	}
}

func TestReconcileDeliverySucceeds(t *testing.T) {
	ledger := &mockLedger{
		ConfirmDeliveredFunc: func(_ context.Context, _, _, _ string) error { return nil },
	}
	b := New(ledger, zap.NewNop())

	if err := b.ReconcileDelivery(context.Background(), "widget-1", "consumer1", "0xcafe"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
