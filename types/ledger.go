package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Split is the canonical shape of a Splits/{id} document: one recorded
// expense, optionally shared with other users. Amount is the per-person
// share, not the total paid (the payer's own share is implicit). The wire
// field for the amount is "price" for compatibility with the external schema.
type Split struct {
	ID         string          `json:"id"`
	AuthoredBy string          `json:"authoredBy"`
	Category   string          `json:"category"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"price"`
	SharedWith []string        `json:"sharedWith"`
	Timestamp  time.Time       `json:"timestamp"`
	TripCode   string          `json:"tripCode"`
	TripName   string          `json:"tripName,omitempty"`
}

// IsPersonal reports whether the split is a personal expense with no
// counterparties. Personal records are excluded from balance aggregation.
func (s *Split) IsPersonal() bool {
	return len(s.SharedWith) == 0
}

// SharesWith reports whether the given user is among the counterparties.
func (s *Split) SharesWith(email string) bool {
	for _, e := range s.SharedWith {
		if e == email {
			return true
		}
	}
	return false
}

// BalanceEntry is the derived net position between two users. CreditTotal is
// the sum of amounts Self authored and shared with Counterparty; DebitTotal
// the reverse. Fully recomputed on every reconciliation pass.
type BalanceEntry struct {
	Self         string          `json:"self"`
	Counterparty string          `json:"counterparty"`
	TripCode     string          `json:"tripCode,omitempty"`
	CreditTotal  decimal.Decimal `json:"creditTotal"`
	DebitTotal   decimal.Decimal `json:"debitTotal"`
}

// Net returns credit minus debit. Positive means the counterparty owes Self.
func (b *BalanceEntry) Net() decimal.Decimal {
	return b.CreditTotal.Sub(b.DebitTotal)
}
