package callbacks

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
)

// CallbackService defines the orchestration operations the handlers call.
type CallbackService interface {
	Authorize(ctx context.Context, req *domain.CallbackRequest) (*domain.Result, error)
	Confirm(ctx context.Context, req *domain.CallbackRequest) (*domain.Result, error)
}

// AuthorizeHandler serves the processor's advisory /authorize callback.
type AuthorizeHandler struct {
	service CallbackService
	logger  *zap.Logger
}

// NewAuthorizeHandler creates the /authorize handler.
func NewAuthorizeHandler(service CallbackService, logger *zap.Logger) *AuthorizeHandler {
	return &AuthorizeHandler{
		service: service,
		logger:  logger,
	}
}

// Handle binds and validates the query parameters, runs the authorize
// workflow, and renders the protocol response.
func (h *AuthorizeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Authorize callback received non-GET request",
			zap.String("method", r.Method),
		)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := domain.ParseCallbackRequest(r.URL.Query(), false)
	if err != nil {
		h.logger.Warn("Authorize callback failed validation", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.service.Authorize(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	switch res.Outcome {
	case domain.OutcomeIntercepted:
		writeOverride(w, res.Override, h.logger)
	case domain.OutcomeInvalidSignature:
		// Suppressed body: the processor treats an unparseable answer as a
		// rejection of the callback.
		h.logger.Warn("Authorize callback signature invalid, suppressing response",
			zap.String("site_order_identifier", req.SiteOrderIdentifier),
		)
		w.WriteHeader(http.StatusOK)
	default:
		writeXML(w, buildAuthorizationResponse(res, time.Now().UTC()), h.logger)
	}
}

// writeServiceError maps the error taxonomy onto HTTP without ever emitting
// a parseable protocol body.
func writeServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var tse *domain.TransientStorageError
	if errors.As(err, &tse) {
		logger.Error("Transient storage failure handling callback", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	logger.Error("Callback handling failed", zap.Error(err))
	w.WriteHeader(http.StatusInternalServerError)
}
