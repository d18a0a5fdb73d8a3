package callbacks

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
)

// ConfirmHandler serves the processor's binding /confirm callback. Every
// signature-valid delivery gets an acknowledgment, duplicates included; the
// at-most-once posting guarantee lives in the service and the ledger, not
// here.
type ConfirmHandler struct {
	service CallbackService
	logger  *zap.Logger
}

// NewConfirmHandler creates the /confirm handler.
func NewConfirmHandler(service CallbackService, logger *zap.Logger) *ConfirmHandler {
	return &ConfirmHandler{
		service: service,
		logger:  logger,
	}
}

// Handle binds and validates the query parameters, runs the confirm
// workflow, and renders the acknowledgment.
func (h *ConfirmHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Confirm callback received non-GET request",
			zap.String("method", r.Method),
		)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := domain.ParseCallbackRequest(r.URL.Query(), true)
	if err != nil {
		h.logger.Warn("Confirm callback failed validation", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.service.Confirm(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	switch res.Outcome {
	case domain.OutcomeIntercepted:
		writeOverride(w, res.Override, h.logger)
	case domain.OutcomeInvalidSignature:
		h.logger.Warn("Confirm callback signature invalid, suppressing response",
			zap.String("pnm_order_identifier", req.PNMOrderIdentifier),
		)
		w.WriteHeader(http.StatusOK)
	default:
		writeXML(w, buildConfirmationResponse(res), h.logger)
	}
}
