package domain

import "time"

// Status is the lifecycle position of a product record. The order is
// meaningful: records only move forward, except the explicit edit action
// that returns a saved record to draft.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSaved     Status = "saved"
	StatusApproved  Status = "approved"
	StatusShipped   Status = "shipped"
	StatusPurchased Status = "purchased"
	StatusDelivered Status = "delivered"
)

// lifecycleRank orders statuses along the lifecycle. Unknown statuses
// rank below draft so corrupt input never passes a forward-only check.
var lifecycleRank = map[Status]int{
	StatusDraft:     1,
	StatusSaved:     2,
	StatusApproved:  3,
	StatusShipped:   4,
	StatusPurchased: 5,
	StatusDelivered: 6,
}

func (s Status) Valid() bool {
	return lifecycleRank[s] != 0
}

// Before reports whether s comes strictly earlier in the lifecycle than other.
func (s Status) Before(other Status) bool {
	return lifecycleRank[s] < lifecycleRank[other]
}

// Mutable reports whether a record in this status may still be edited,
// saved, or deleted by its creator.
func (s Status) Mutable() bool {
	return s == StatusDraft || s == StatusSaved
}

// Transferred reports whether ownership has moved to another party.
func (s Status) Transferred() bool {
	return s == StatusShipped || s == StatusPurchased || s == StatusDelivered
}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProducer Role = "producer"
	RoleSupplier Role = "supplier"
	RoleConsumer Role = "consumer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProducer, RoleSupplier, RoleConsumer:
		return true
	}
	return false
}

// ProductRecord is one lot of a business product. RecordID identifies the
// lot and is never reused; ProductID groups lots of the same product,
// so it is not unique across records once a lot has been split.
type ProductRecord struct {
	RecordID      string    `json:"recordId"`
	ProductID     string    `json:"productId"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	BatchID       string    `json:"batchId"`
	Creator       string    `json:"creator"`
	Price         float64   `json:"price"`
	Quantity      int       `json:"quantity"`
	Status        Status    `json:"status"`
	Owner         string    `json:"owner,omitempty"`
	TxRef         string    `json:"txRef,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// InFlight reports whether this record still blocks a new registration of
// the same (productId, creator) pair: lots that have not yet been
// allocated represent the same physical batch, allocated lots do not.
func (r ProductRecord) InFlight() bool {
	return r.Status == StatusDraft || r.Status == StatusSaved || r.Status == StatusApproved
}

// QuantityByProduct sums quantities per productId across a snapshot.
// Ledger operations must conserve these sums; tests rely on that.
func QuantityByProduct(records []ProductRecord) map[string]int {
	totals := make(map[string]int, len(records))
	for _, r := range records {
		totals[r.ProductID] += r.Quantity
	}
	return totals
}
