package ports

import (
	"context"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
)

// Interceptor is the operational override hook. When Intercept returns a
// non-nil Override the handler bypasses normal processing entirely and
// returns it verbatim; it is consulted before any ledger mutation and wins
// regardless of signature validity.
type Interceptor interface {
	Intercept(ctx context.Context, req *domain.CallbackRequest) (*domain.Override, error)
}

// AuthorizePolicy is the pluggable business predicate behind the /authorize
// accept/decline decision. It is evaluated only for verified, uninterrupted
// requests and must be deterministic for identical inputs.
type AuthorizePolicy interface {
	Evaluate(ctx context.Context, req *domain.CallbackRequest) (bool, error)
}

// PaymentRecorder performs the one-time financial action for a confirmed
// payment. It is invoked at most once per ledger key.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, req *domain.CallbackRequest) error
}

// SignatureVerifier checks that a callback's payload signature matches the
// one computed from the canonical parameter set and the shared secret. It is
// a pure function of the request and the secret.
type SignatureVerifier interface {
	Verify(ctx context.Context, req *domain.CallbackRequest) (bool, error)
}

// SecretSource supplies the shared secret used to sign callbacks.
type SecretSource interface {
	SharedSecret(ctx context.Context) (string, error)
}
