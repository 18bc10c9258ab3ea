// Package views derives read-only projections from a ledger snapshot.
// Every function is pure: it never mutates its input and never touches
// the store, so views run safely alongside writers as long as the
// snapshot itself was obtained under the store's lock discipline.
package views

import (
	"iter"
	"strings"

	"chaintrack/internal/domain"
)

// AvailableForRole lists the records eligible for the next allocation
// step of the given role. Suppliers buy approved, still-unowned lots;
// consumers buy shipped lots held by a supplier. Admin sees both pools;
// producers do not allocate.
func AvailableForRole(records []domain.ProductRecord, role domain.Role, actor string) []domain.ProductRecord {
	var out []domain.ProductRecord
	for _, r := range records {
		switch role {
		case domain.RoleSupplier:
			if r.Status == domain.StatusApproved && r.Owner == "" {
				out = append(out, r)
			}
		case domain.RoleConsumer:
			if r.Status == domain.StatusShipped && r.Owner != "" {
				out = append(out, r)
			}
		case domain.RoleAdmin:
			if (r.Status == domain.StatusApproved && r.Owner == "") ||
				(r.Status == domain.StatusShipped && r.Owner != "") {
				out = append(out, r)
			}
		}
	}
	return out
}

// OwnedBy lists the records currently held by the actor.
func OwnedBy(records []domain.ProductRecord, actor string) []domain.ProductRecord {
	var out []domain.ProductRecord
	for _, r := range records {
		if r.Owner == actor {
			out = append(out, r)
		}
	}
	return out
}

// Search filters by case-insensitive substring over productId, name and
// creator, preserving input order. The returned sequence is lazy and
// restartable; ranging over it twice yields the same records.
func Search(records []domain.ProductRecord, query string) iter.Seq[domain.ProductRecord] {
	q := strings.ToLower(query)
	return func(yield func(domain.ProductRecord) bool) {
		for _, r := range records {
			if q != "" &&
				!strings.Contains(strings.ToLower(r.ProductID), q) &&
				!strings.Contains(strings.ToLower(r.Name), q) &&
				!strings.Contains(strings.ToLower(r.Creator), q) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// History returns all lots of a product in insertion order, the
// traceability trail shown on the dashboards.
func History(records []domain.ProductRecord, productID string) []domain.ProductRecord {
	var out []domain.ProductRecord
	for _, r := range records {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out
}

// StatusCounts tallies records per lifecycle status for the dashboard
// stat cards.
func StatusCounts(records []domain.ProductRecord) map[domain.Status]int {
	counts := make(map[domain.Status]int)
	for _, r := range records {
		counts[r.Status]++
	}
	return counts
}
