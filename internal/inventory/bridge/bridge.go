// Package bridge reconciles local records with the outcome of anchoring
// actions already performed by the external ledger client. The bridge
// never initiates external calls; it only receives the transaction
// reference and correlation id after the fact. When the local record no
// longer matches, the divergence is reported, not retried: the external
// action succeeded and only the operator can decide what to do.
package bridge

import (
	"context"

	apperrors "chaintrack/internal/errors"

	"go.uber.org/zap"
)

type InventoryLedger interface {
	MarkApproved(ctx context.Context, productID, creator, txRef, correlationID string) error
	ConfirmDelivered(ctx context.Context, productID, owner, txRef string) error
}

type Bridge struct {
	ledger InventoryLedger
	logger *zap.Logger
}

func New(ledger InventoryLedger, logger *zap.Logger) *Bridge {
	return &Bridge{ledger: ledger, logger: logger}
}

// ReconcileApproval marks a lot approved with the reference of its
// completed anchoring transaction.
func (b *Bridge) ReconcileApproval(ctx context.Context, productID, creator, txRef, correlationID string) error {
	if err := b.ledger.MarkApproved(ctx, productID, creator, txRef, correlationID); err != nil {
		b.logger.Warn("approval reconciliation failed",
			zap.String("productId", productID),
			zap.String("creator", creator),
			zap.String("txRef", txRef),
			zap.Error(err))
		return apperrors.NewReconciliationFailedError(productID, creator, txRef, err)
	}
	return nil
}

// ReconcileDelivery marks a purchased lot delivered after the external
// confirmation completed.
func (b *Bridge) ReconcileDelivery(ctx context.Context, productID, owner, txRef string) error {
	if err := b.ledger.ConfirmDelivered(ctx, productID, owner, txRef); err != nil {
		b.logger.Warn("delivery reconciliation failed",
			zap.String("productId", productID),
			zap.String("owner", owner),
			zap.String("txRef", txRef),
			zap.Error(err))
		return apperrors.NewReconciliationFailedError(productID, owner, txRef, err)
	}
	return nil
}
