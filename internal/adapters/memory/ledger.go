package memory

import (
	"context"
	"sync"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
)

// Ledger is an in-process PaymentLedger for development mode and tests.
// It honors the same atomic contract as the PostgreSQL repository but does
// not survive restarts; never run it against live processor traffic.
type Ledger struct {
	mu   sync.Mutex
	seen map[string]ports.LedgerEntry
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]ports.LedgerEntry)}
}

// CheckAndRecord records the key if unseen and reports whether this caller
// was first.
func (l *Ledger) CheckAndRecord(ctx context.Context, entry ports.LedgerEntry) (ports.LedgerResult, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.TransientStorageError{Op: "ledger.check_and_record", Err: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[entry.PaymentIdentifier]; ok {
		return ports.AlreadySeen, nil
	}
	l.seen[entry.PaymentIdentifier] = entry
	return ports.FirstSeen, nil
}

// Len returns the number of recorded keys.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

var _ ports.PaymentLedger = (*Ledger)(nil)
