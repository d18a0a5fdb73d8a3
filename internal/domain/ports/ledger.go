package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerResult is the outcome of an atomic check-and-record on the
// idempotency ledger.
type LedgerResult string

const (
	// FirstSeen permits the caller to perform the one-time financial action.
	FirstSeen LedgerResult = "first_seen"
	// AlreadySeen means the key was recorded by an earlier delivery; the
	// caller must skip the financial action but still acknowledge.
	AlreadySeen LedgerResult = "already_seen"
)

// LedgerEntry is what a /confirm delivery records against its dedup key.
type LedgerEntry struct {
	PaymentIdentifier   string
	SiteOrderIdentifier string
	Amount              *decimal.Decimal
}

// PaymentLedger is the durable mapping from processor payment identifier to
// "already handled". CheckAndRecord must be atomic per key: under concurrent
// or sequential calls with the same key it reports FirstSeen exactly once.
// Storage failures and timeouts return a *domain.TransientStorageError and
// never a LedgerResult.
type PaymentLedger interface {
	CheckAndRecord(ctx context.Context, entry LedgerEntry) (LedgerResult, error)
}
