package callbacks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
	"github.com/kevin07696/paynearme-callbacks/internal/signature"
)

// Service orchestrates the trust and idempotency protocol for both callback
// endpoints: freshness and signature verification, test-traffic
// classification, special-condition interception, the authorize business
// decision, and the at-most-once confirm posting through the ledger.
type Service struct {
	verifier    ports.SignatureVerifier
	freshness   signature.FreshnessChecker
	ledger      ports.PaymentLedger
	interceptor ports.Interceptor
	policy      ports.AuthorizePolicy
	recorder    ports.PaymentRecorder
	logger      *zap.Logger
}

// NewService wires the callback orchestrator. interceptor and recorder may
// be nil: no interception, and ledger-only confirm handling.
func NewService(
	verifier ports.SignatureVerifier,
	freshness signature.FreshnessChecker,
	ledger ports.PaymentLedger,
	interceptor ports.Interceptor,
	policy ports.AuthorizePolicy,
	recorder ports.PaymentRecorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		verifier:    verifier,
		freshness:   freshness,
		ledger:      ledger,
		interceptor: interceptor,
		policy:      policy,
		recorder:    recorder,
		logger:      logger,
	}
}

// Authorize handles the advisory pre-check callback. It never touches the
// ledger: the processor may repeat /authorize freely.
func (s *Service) Authorize(ctx context.Context, req *domain.CallbackRequest) (*domain.Result, error) {
	if req.Test {
		s.logger.Warn("This /authorize request is a test! Do not handle tests as real financial events!",
			zap.String("site_order_identifier", req.SiteOrderIdentifier),
		)
	}

	if override, err := s.intercept(ctx, req); err != nil {
		return nil, err
	} else if override != nil {
		return &domain.Result{Outcome: domain.OutcomeIntercepted, Override: override}, nil
	}

	valid, err := s.verified(ctx, req)
	if err != nil {
		return nil, err
	}
	if !valid {
		return &domain.Result{Outcome: domain.OutcomeInvalidSignature}, nil
	}

	accept, err := s.policy.Evaluate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("evaluate authorize policy: %w", err)
	}

	decision := "declined"
	if accept {
		decision = "accepted"
	}
	s.logger.Info("Authorize decision",
		zap.String("site_order_identifier", req.SiteOrderIdentifier),
		zap.String("decision", decision),
		zap.Bool("test", req.Test),
	)

	outcome := domain.OutcomeDeclined
	if accept {
		outcome = domain.OutcomeAccepted
	}
	if req.Test {
		outcome = domain.OutcomeTestIgnored
	}

	return &domain.Result{
		Outcome:             outcome,
		PNMOrderIdentifier:  req.PNMOrderIdentifier,
		SiteOrderIdentifier: req.SiteOrderIdentifier,
		Accept:              accept,
	}, nil
}

// Confirm handles the binding payment notification. Every signature-valid
// delivery is acknowledged, including duplicates; the one-time financial
// action runs only for the delivery that wins the ledger race.
func (s *Service) Confirm(ctx context.Context, req *domain.CallbackRequest) (*domain.Result, error) {
	if req.Test {
		s.logger.Warn("This /confirm request is a test! Do not handle tests as real financial events!",
			zap.String("pnm_order_identifier", req.PNMOrderIdentifier),
		)
	}
	if req.Declined() {
		s.logger.Warn(fmt.Sprintf("Transaction %s was declined - do not post, still respond to callback.", req.SiteOrderIdentifier),
			zap.String("pnm_order_identifier", req.PNMOrderIdentifier),
		)
	}

	if override, err := s.intercept(ctx, req); err != nil {
		return nil, err
	} else if override != nil {
		return &domain.Result{Outcome: domain.OutcomeIntercepted, Override: override}, nil
	}

	valid, err := s.verified(ctx, req)
	if err != nil {
		return nil, err
	}
	if !valid {
		// Forged or stale. Suppressing the body signals rejection; the
		// ledger must not learn the key.
		return &domain.Result{Outcome: domain.OutcomeInvalidSignature}, nil
	}

	result := &domain.Result{
		Outcome:             domain.OutcomeAccepted,
		PNMOrderIdentifier:  req.PNMOrderIdentifier,
		SiteOrderIdentifier: req.SiteOrderIdentifier,
	}

	if req.Test {
		result.Outcome = domain.OutcomeTestIgnored
		return result, nil
	}

	ledgerResult, err := s.ledger.CheckAndRecord(ctx, ports.LedgerEntry{
		PaymentIdentifier:   req.LedgerKey(),
		SiteOrderIdentifier: req.SiteOrderIdentifier,
		Amount:              req.PNMAmount,
	})
	if err != nil {
		// Neither first nor duplicate. No acknowledgment may be fabricated;
		// the processor's retry policy takes over.
		return nil, err
	}

	switch ledgerResult {
	case ports.FirstSeen:
		if !req.Declined() {
			if err := s.post(ctx, req); err != nil {
				return nil, err
			}
		}
	case ports.AlreadySeen:
		result.Duplicate = true
		s.logger.Info("Duplicate /confirm delivery, acknowledging without posting",
			zap.String("pnm_payment_identifier", req.LedgerKey()),
		)
	}

	return result, nil
}

// post runs the one-time financial action for a first-seen confirm.
func (s *Service) post(ctx context.Context, req *domain.CallbackRequest) error {
	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.RecordPayment(ctx, req); err != nil {
		// The key is recorded but the posting failed; surface the failure
		// loudly so operators reconcile against the ledger.
		s.logger.Error("Payment posting failed after ledger record",
			zap.String("pnm_payment_identifier", req.LedgerKey()),
			zap.Error(err),
		)
		return fmt.Errorf("record payment %s: %w", req.LedgerKey(), err)
	}
	return nil
}

func (s *Service) intercept(ctx context.Context, req *domain.CallbackRequest) (*domain.Override, error) {
	if s.interceptor == nil {
		return nil, nil
	}
	return s.interceptor.Intercept(ctx, req)
}

// verified applies the freshness window and the signature check. A stale or
// future timestamp is reported the same way as a signature mismatch.
func (s *Service) verified(ctx context.Context, req *domain.CallbackRequest) (bool, error) {
	if !s.freshness.Fresh(req.Timestamp, time.Now().UTC()) {
		s.logger.Warn("Callback timestamp outside freshness window",
			zap.Int64("timestamp", req.Timestamp),
			zap.String("pnm_order_identifier", req.PNMOrderIdentifier),
		)
		return false, nil
	}
	return s.verifier.Verify(ctx, req)
}
