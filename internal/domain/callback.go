package domain

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CallbackRequest is a typed view of the query parameters PayNearMe sends
// with an /authorize or /confirm callback. Parsing validates presence and
// type at the boundary; everything downstream works with this struct, never
// the raw parameter map.
type CallbackRequest struct {
	Signature string
	Version   string
	Timestamp int64

	// PNMOrderIdentifier is required on /confirm and optional on /authorize.
	PNMOrderIdentifier string
	// PNMPaymentIdentifier, when present, identifies the individual payment
	// and takes precedence as the dedup key.
	PNMPaymentIdentifier string

	SiteOrderIdentifier string
	SiteOrderAnnotation string
	SiteIdentifier      string

	Test   bool
	Status string

	PNMAmount         *decimal.Decimal
	SitePaymentAmount *decimal.Decimal

	// Params holds the raw query parameters for signature canonicalization.
	Params url.Values
}

// ParseCallbackRequest validates and binds the callback query parameters.
// requirePNMOrder is true for /confirm, where pnm_order_identifier is
// mandatory. A missing or mistyped field returns a *ValidationError.
func ParseCallbackRequest(params url.Values, requirePNMOrder bool) (*CallbackRequest, error) {
	req := &CallbackRequest{
		Signature:            params.Get("signature"),
		Version:              params.Get("version"),
		PNMOrderIdentifier:   params.Get("pnm_order_identifier"),
		PNMPaymentIdentifier: params.Get("pnm_payment_identifier"),
		SiteOrderIdentifier:  params.Get("site_order_identifier"),
		SiteOrderAnnotation:  params.Get("site_order_annotation"),
		SiteIdentifier:       params.Get("site_identifier"),
		Status:               params.Get("status"),
		Params:               params,
	}

	if req.Signature == "" {
		return nil, NewValidationError("signature", "is required")
	}
	if req.Version == "" {
		return nil, NewValidationError("version", "is required")
	}

	rawTS := params.Get("timestamp")
	if rawTS == "" {
		return nil, NewValidationError("timestamp", "is required")
	}
	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return nil, NewValidationError("timestamp", "must be an integer")
	}
	req.Timestamp = ts

	if requirePNMOrder && req.PNMOrderIdentifier == "" {
		return nil, NewValidationError("pnm_order_identifier", "is required")
	}

	if rawTest := params.Get("test"); rawTest != "" {
		test, err := strconv.ParseBool(rawTest)
		if err != nil {
			return nil, NewValidationError("test", "must be a boolean")
		}
		req.Test = test
	}

	if req.PNMAmount, err = parseAmount(params, "pnm_amount"); err != nil {
		return nil, err
	}
	if req.SitePaymentAmount, err = parseAmount(params, "site_payment_amount"); err != nil {
		return nil, err
	}

	return req, nil
}

func parseAmount(params url.Values, field string) (*decimal.Decimal, error) {
	raw := params.Get(field)
	if raw == "" {
		return nil, nil
	}
	amt, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, NewValidationError(field, "must be a decimal amount")
	}
	return &amt, nil
}

// LedgerKey returns the identifier used to deduplicate /confirm deliveries.
// PayNearMe issues pnm_payment_identifier per payment; older callback
// versions only carry pnm_order_identifier.
func (r *CallbackRequest) LedgerKey() string {
	if r.PNMPaymentIdentifier != "" {
		return r.PNMPaymentIdentifier
	}
	return r.PNMOrderIdentifier
}

// Declined reports whether the processor flagged this callback's transaction
// as declined. Informational only: declined confirms are still acknowledged.
func (r *CallbackRequest) Declined() bool {
	return strings.EqualFold(r.Status, "decline")
}
