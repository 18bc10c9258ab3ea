package inventory

import (
	"context"

	"chaintrack/internal/domain"
	"chaintrack/internal/inventory/ledger"
)

// Ledger is the controller-facing surface of the inventory ledger.
type Ledger interface {
	Snapshot(ctx context.Context) ([]domain.ProductRecord, error)
	Create(ctx context.Context, p ledger.CreateParams) error
	Edit(ctx context.Context, productID, creator string, fields ledger.EditFields) error
	Save(ctx context.Context, productID, creator string) error
	Delete(ctx context.Context, productID, creator string) error
	Allocate(ctx context.Context, p ledger.AllocateParams) error
}

// Reconciler applies completed external anchoring actions to local records.
type Reconciler interface {
	ReconcileApproval(ctx context.Context, productID, creator, txRef, correlationID string) error
	ReconcileDelivery(ctx context.Context, productID, owner, txRef string) error
}
