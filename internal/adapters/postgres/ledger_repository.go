package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
)

// LedgerRepository implements the PaymentLedger port on PostgreSQL. The
// atomic check-and-record contract is delegated to a single
// INSERT ... ON CONFLICT DO NOTHING: the row count tells us whether this
// delivery won the race for the key. Per-key linearizability comes from the
// primary key constraint, so concurrent duplicates never both see FirstSeen.
type LedgerRepository struct {
	pool    *pgxpool.Pool
	logger  *zap.Logger
	timeout time.Duration
}

// NewLedgerRepository creates a ledger repository. timeout bounds every
// ledger access; a timed-out access is a transient failure, never a result.
func NewLedgerRepository(pool *pgxpool.Pool, logger *zap.Logger, timeout time.Duration) *LedgerRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LedgerRepository{
		pool:    pool,
		logger:  logger,
		timeout: timeout,
	}
}

// CheckAndRecord records the payment identifier if unseen and reports
// whether this caller was first.
func (r *LedgerRepository) CheckAndRecord(ctx context.Context, entry ports.LedgerEntry) (ports.LedgerResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var amount pgtype.Numeric
	if entry.Amount != nil {
		if err := amount.Scan(entry.Amount.String()); err != nil {
			return "", &domain.TransientStorageError{Op: "ledger.check_and_record", Err: err}
		}
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO payment_ledger (pnm_payment_identifier, site_order_identifier, amount, recorded_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (pnm_payment_identifier) DO NOTHING
	`,
		entry.PaymentIdentifier,
		pgtype.Text{String: entry.SiteOrderIdentifier, Valid: entry.SiteOrderIdentifier != ""},
		amount,
	)
	if err != nil {
		r.logger.Error("Ledger check-and-record failed",
			zap.String("pnm_payment_identifier", entry.PaymentIdentifier),
			zap.Error(err),
		)
		return "", &domain.TransientStorageError{Op: "ledger.check_and_record", Err: err}
	}

	if tag.RowsAffected() == 1 {
		return ports.FirstSeen, nil
	}
	return ports.AlreadySeen, nil
}

var _ ports.PaymentLedger = (*LedgerRepository)(nil)
