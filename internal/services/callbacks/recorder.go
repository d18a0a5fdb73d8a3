package callbacks

import (
	"context"

	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
)

// LogRecorder is the default PaymentRecorder: it logs the confirmed payment
// so downstream systems can be wired in later. Real deployments replace it
// with an adapter into the merchant's order management system.
type LogRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder creates a logging recorder.
func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// RecordPayment logs the payment. It never fails.
func (r *LogRecorder) RecordPayment(ctx context.Context, req *domain.CallbackRequest) error {
	fields := []zap.Field{
		zap.String("pnm_payment_identifier", req.LedgerKey()),
		zap.String("pnm_order_identifier", req.PNMOrderIdentifier),
		zap.String("site_order_identifier", req.SiteOrderIdentifier),
	}
	if req.PNMAmount != nil {
		fields = append(fields, zap.String("amount", req.PNMAmount.StringFixed(2)))
	}
	r.logger.Info("Posting confirmed payment", fields...)
	return nil
}

var _ ports.PaymentRecorder = (*LogRecorder)(nil)
