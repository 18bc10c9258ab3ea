// Package ledger is the only component allowed to mutate product records.
// Every operation runs as one read-modify-write critical section against
// the record store, so the persisted snapshot is always the result of a
// whole operation or none of it.
package ledger

import (
	"context"
	"time"

	"chaintrack/internal/domain"
	apperrors "chaintrack/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RecordStore interface {
	LoadAll(ctx context.Context) ([]domain.ProductRecord, error)
	Update(ctx context.Context, fn func(records []domain.ProductRecord) ([]domain.ProductRecord, error)) error
}

type Ledger struct {
	store  RecordStore
	logger *zap.Logger
}

func New(store RecordStore, logger *zap.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// Snapshot returns the current persisted collection for the query views.
func (l *Ledger) Snapshot(ctx context.Context) ([]domain.ProductRecord, error) {
	return l.store.LoadAll(ctx)
}

type CreateParams struct {
	ProductID   string
	Name        string
	Description string
	BatchID     string
	Creator     string
	Price       float64
	Quantity    int
}

// Create registers a new draft lot. A lot with the same (productId,
// creator) that has not yet been allocated is a duplicate registration;
// historical allocated lots of the same product are distinct physical
// batches and do not block it.
func (l *Ledger) Create(ctx context.Context, p CreateParams) error {
	if err := validateAmounts(&p.Quantity, &p.Price); err != nil {
		return err
	}
	err := l.store.Update(ctx, func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		for _, r := range records {
			if r.ProductID == p.ProductID && r.Creator == p.Creator && r.InFlight() {
				return nil, apperrors.NewDuplicateRecordError(p.ProductID, p.Creator)
			}
		}

		now := time.Now().UTC()
		records = append(records, domain.ProductRecord{
			RecordID:    uuid.New().String(),
			ProductID:   p.ProductID,
			Name:        p.Name,
			Description: p.Description,
			BatchID:     p.BatchID,
			Creator:     p.Creator,
			Price:       p.Price,
			Quantity:    p.Quantity,
			Status:      domain.StatusDraft,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return records, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("record created",
		zap.String("productId", p.ProductID),
		zap.String("creator", p.Creator),
		zap.Int("quantity", p.Quantity))
	return nil
}

// EditFields are the fields a creator may still change before approval.
// Nil means "leave unchanged".
type EditFields struct {
	Name        *string
	Description *string
	BatchID     *string
	Price       *float64
	Quantity    *int
}

// Edit applies field changes to the most recently created mutable record
// for (productId, creator). Editing a saved record returns it to draft,
// the one permitted regression in the lifecycle.
func (l *Ledger) Edit(ctx context.Context, productID, creator string, fields EditFields) error {
	if err := validateAmounts(fields.Quantity, fields.Price); err != nil {
		return err
	}
	err := l.store.Update(ctx, func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		idx := lastIndex(records, func(r domain.ProductRecord) bool {
			return r.ProductID == productID && r.Creator == creator && r.Status.Mutable()
		})
		if idx < 0 {
			return nil, apperrors.NewRecordNotFoundError(productID, creator)
		}

		r := &records[idx]
		if fields.Name != nil {
			r.Name = *fields.Name
		}
		if fields.Description != nil {
			r.Description = *fields.Description
		}
		if fields.BatchID != nil {
			r.BatchID = *fields.BatchID
		}
		if fields.Price != nil {
			r.Price = *fields.Price
		}
		if fields.Quantity != nil {
			r.Quantity = *fields.Quantity
		}
		if r.Status == domain.StatusSaved {
			r.Status = domain.StatusDraft
		}
		r.UpdatedAt = time.Now().UTC()
		return records, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("record edited", zap.String("productId", productID), zap.String("creator", creator))
	return nil
}

// Save locks the most recent draft for (productId, creator) against
// further edits.
func (l *Ledger) Save(ctx context.Context, productID, creator string) error {
	err := l.store.Update(ctx, func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		idx := lastIndex(records, func(r domain.ProductRecord) bool {
			return r.ProductID == productID && r.Creator == creator
		})
		if idx < 0 {
			return nil, apperrors.NewRecordNotFoundError(productID, creator)
		}

		r := &records[idx]
		if r.Status != domain.StatusDraft {
			return nil, apperrors.NewInvalidTransitionError(productID, creator, string(r.Status), "save")
		}
		r.Status = domain.StatusSaved
		r.UpdatedAt = time.Now().UTC()
		return records, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("record saved", zap.String("productId", productID), zap.String("creator", creator))
	return nil
}

// MarkApproved records the external anchoring of a saved lot.
func (l *Ledger) MarkApproved(ctx context.Context, productID, creator, txRef, correlationID string) error {
	err := l.store.Update(ctx, func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		idx := lastIndex(records, func(r domain.ProductRecord) bool {
			return r.ProductID == productID && r.Creator == creator
		})
		if idx < 0 {
			return nil, apperrors.NewRecordNotFoundError(productID, creator)
		}

		r := &records[idx]
		if r.Status != domain.StatusSaved {
			return nil, apperrors.NewInvalidTransitionError(productID, creator, string(r.Status), "approve")
		}
		r.Status = domain.StatusApproved
		r.TxRef = txRef
		r.CorrelationID = correlationID
		r.UpdatedAt = time.Now().UTC()
		return records, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("record approved",
		zap.String("productId", productID),
		zap.String("creator", creator),
		zap.String("txRef", txRef))
	return nil
}

// Delete removes the most recent (productId, creator) lot while it is
// still draft or saved. Once a lot has left the creator's hands it is
// history and can never be destroyed.
func (l *Ledger) Delete(ctx context.Context, productID, creator string) error {
	err := l.store.Update(ctx, func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		idx := lastIndex(records, func(r domain.ProductRecord) bool {
			return r.ProductID == productID && r.Creator == creator
		})
		if idx < 0 {
			return nil, apperrors.NewRecordNotFoundError(productID, creator)
		}

		if !records[idx].Status.Mutable() {
			return nil, apperrors.NewInvalidTransitionError(productID, creator, string(records[idx].Status), "delete")
		}

		return append(records[:idx], records[idx+1:]...), nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("record deleted", zap.String("productId", productID), zap.String("creator", creator))
	return nil
}

// SellerFilter selects allocation candidates: records in the given status
// whose ownership matches the buying role's counterparty. Seller narrows
// the match to one holder when set.
type SellerFilter struct {
	Status domain.Status
	Owned  bool
	Seller string
}

func (f SellerFilter) matches(r domain.ProductRecord) bool {
	if r.Status != f.Status {
		return false
	}
	if f.Owned != (r.Owner != "") {
		return false
	}
	if f.Seller != "" && r.Owner != f.Seller {
		return false
	}
	return true
}

// FilterForRole returns the seller filter and target status for the next
// allocation step a buying role performs: suppliers take approved unowned
// lots to shipped, consumers take shipped owned lots to purchased.
func FilterForRole(role domain.Role, seller string) (SellerFilter, domain.Status, bool) {
	switch role {
	case domain.RoleSupplier:
		return SellerFilter{Status: domain.StatusApproved}, domain.StatusShipped, true
	case domain.RoleConsumer:
		return SellerFilter{Status: domain.StatusShipped, Owned: true, Seller: seller}, domain.StatusPurchased, true
	}
	return SellerFilter{}, "", false
}

type AllocateParams struct {
	ProductID     string
	Buyer         string
	Quantity      int
	Filter        SellerFilter
	TargetStatus  domain.Status
	TxRef         string
	CorrelationID string
}

// Allocate transfers the requested quantity of a product to the buyer.
// A full take mutates the candidate lot in place; a partial take splits
// it, leaving the remainder with its current owner and status and
// appending a new lot for the buyer. Both outcomes conserve the total
// quantity per product and persist through a single snapshot write.
func (l *Ledger) Allocate(ctx context.Context, p AllocateParams) error {
	if p.Quantity < 1 {
		return apperrors.NewValidationError("allocation quantity must be at least 1", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be at least 1",
		})
	}

	var split bool
	err := l.store.Update(ctx, func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		idx := lastIndex(records, func(r domain.ProductRecord) bool {
			return r.ProductID == p.ProductID && p.Filter.matches(r)
		})
		if idx < 0 {
			return nil, apperrors.NewNoAllocatableRecordError(p.ProductID)
		}

		cand := &records[idx]
		if p.Quantity > cand.Quantity {
			return nil, apperrors.NewInsufficientQuantityError(p.ProductID, p.Quantity, cand.Quantity)
		}

		now := time.Now().UTC()
		if p.Quantity == cand.Quantity {
			cand.Owner = p.Buyer
			cand.Status = p.TargetStatus
			cand.TxRef = p.TxRef
			cand.CorrelationID = p.CorrelationID
			cand.UpdatedAt = now
			return records, nil
		}

		split = true
		cand.Quantity -= p.Quantity
		cand.UpdatedAt = now

		records = append(records, domain.ProductRecord{
			RecordID:      uuid.New().String(),
			ProductID:     cand.ProductID,
			Name:          cand.Name,
			Description:   cand.Description,
			BatchID:       cand.BatchID,
			Creator:       cand.Creator,
			Price:         cand.Price,
			Quantity:      p.Quantity,
			Status:        p.TargetStatus,
			Owner:         p.Buyer,
			TxRef:         p.TxRef,
			CorrelationID: p.CorrelationID,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		return records, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("quantity allocated",
		zap.String("productId", p.ProductID),
		zap.String("buyer", p.Buyer),
		zap.Int("quantity", p.Quantity),
		zap.String("targetStatus", string(p.TargetStatus)),
		zap.Bool("split", split))
	return nil
}

// ConfirmDelivered records the externally confirmed hand-over of a
// purchased lot to its owner.
func (l *Ledger) ConfirmDelivered(ctx context.Context, productID, owner, txRef string) error {
	err := l.store.Update(ctx, func(records []domain.ProductRecord) ([]domain.ProductRecord, error) {
		idx := lastIndex(records, func(r domain.ProductRecord) bool {
			return r.ProductID == productID && r.Owner == owner
		})
		if idx < 0 {
			return nil, apperrors.NewRecordNotFoundError(productID, owner)
		}

		r := &records[idx]
		if r.Status != domain.StatusPurchased {
			return nil, apperrors.NewInvalidTransitionError(productID, owner, string(r.Status), "confirm delivery")
		}
		r.Status = domain.StatusDelivered
		r.TxRef = txRef
		r.UpdatedAt = time.Now().UTC()
		return records, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("delivery confirmed", zap.String("productId", productID), zap.String("owner", owner))
	return nil
}

// validateAmounts guards the quantity and price ranges at the ledger
// boundary. The split algorithm and the per-product totals both rely on
// quantities never going negative, so the check cannot live in the
// controllers alone. Nil means the field is not being set.
func validateAmounts(quantity *int, price *float64) error {
	var details []apperrors.ValidationDetail
	if quantity != nil && *quantity < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be non-negative",
		})
	}
	if price != nil && *price < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be non-negative",
		})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid record fields", details...)
	}
	return nil
}

// lastIndex finds the most recently created match by reverse insertion
// order, which stays well-defined even when timestamps collide.
func lastIndex(records []domain.ProductRecord, match func(domain.ProductRecord) bool) int {
	for i := len(records) - 1; i >= 0; i-- {
		if match(records[i]) {
			return i
		}
	}
	return -1
}
