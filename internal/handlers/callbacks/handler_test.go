package callbacks

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/adapters/memory"
	"github.com/kevin07696/paynearme-callbacks/internal/adapters/secrets"
	"github.com/kevin07696/paynearme-callbacks/internal/domain"
	"github.com/kevin07696/paynearme-callbacks/internal/services/callbacks"
	"github.com/kevin07696/paynearme-callbacks/internal/signature"
)

const testSecret = "test-shared-secret"

type stubService struct {
	result *domain.Result
	err    error
}

func (s stubService) Authorize(ctx context.Context, req *domain.CallbackRequest) (*domain.Result, error) {
	return s.result, s.err
}

func (s stubService) Confirm(ctx context.Context, req *domain.CallbackRequest) (*domain.Result, error) {
	return s.result, s.err
}

// newService wires the real orchestrator against in-memory adapters so the
// handler tests exercise the full callback path.
func newService() *callbacks.Service {
	return callbacks.NewService(
		signature.NewSigner(secrets.NewStaticSource(testSecret)),
		signature.NewFreshnessChecker(5*time.Minute, time.Minute),
		memory.NewLedger(),
		nil,
		callbacks.PrefixPolicy{Prefix: "TEST"},
		nil,
		zap.NewNop(),
	)
}

func signedQuery(overrides map[string]string) url.Values {
	params := url.Values{}
	params.Set("version", "2.0")
	params.Set("timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("pnm_order_identifier", "PNM-1")
	params.Set("site_order_identifier", "TEST123")
	for key, value := range overrides {
		if value == "" {
			params.Del(key)
			continue
		}
		params.Set(key, value)
	}
	params.Set("signature", signature.Sign(params, testSecret))
	return params
}

func decodeBody(body []byte, doc interface{}) error {
	return xml.Unmarshal(body, doc)
}

func get(t *testing.T, handler http.HandlerFunc, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path+"?"+params.Encode(), nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAuthorizeHandler_AcceptedOrder(t *testing.T) {
	handler := NewAuthorizeHandler(newService(), zap.NewNop())

	rec := get(t, handler.Handle, "/authorize", signedQuery(nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `xmlns:t="http://www.paynearme.com/api_callbacks"`)
	assert.Contains(t, body, "<t:payment_authorization_response")
	assert.Contains(t, body, "<t:pnm_order_identifier>PNM-1</t:pnm_order_identifier>")
	assert.Contains(t, body, "<t:accept_payment>yes</t:accept_payment>")
	assert.Contains(t, body, "<t:receipt>Thank you for your order</t:receipt>")
}

func TestAuthorizeHandler_DeclinedOrder(t *testing.T) {
	handler := NewAuthorizeHandler(newService(), zap.NewNop())

	rec := get(t, handler.Handle, "/authorize", signedQuery(map[string]string{
		"site_order_identifier": "ORD999",
	}))

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<t:accept_payment>no</t:accept_payment>")
	assert.Contains(t, body, "<t:receipt>Order declined</t:receipt>")
	assert.Contains(t, body, "<t:memo>Invalid Payment: ORD999</t:memo>")
}

func TestAuthorizeHandler_InvalidSignature(t *testing.T) {
	handler := NewAuthorizeHandler(newService(), zap.NewNop())

	params := signedQuery(nil)
	params.Set("signature", "deadbeefdeadbeefdeadbeefdeadbeef")
	rec := get(t, handler.Handle, "/authorize", params)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String(), "forged callbacks get no parseable body")
}

func TestAuthorizeHandler_MissingParams(t *testing.T) {
	handler := NewAuthorizeHandler(newService(), zap.NewNop())

	tests := []struct {
		name string
		drop string
	}{
		{"missing signature", "signature"},
		{"missing timestamp", "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := signedQuery(nil)
			params.Del(tt.drop)
			rec := get(t, handler.Handle, "/authorize", params)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAuthorizeHandler_WithoutPNMOrderIdentifier(t *testing.T) {
	// pnm_order_identifier is optional on /authorize: the processor has not
	// assigned one yet for some flows.
	handler := NewAuthorizeHandler(newService(), zap.NewNop())

	rec := get(t, handler.Handle, "/authorize", signedQuery(map[string]string{
		"pnm_order_identifier": "",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<t:accept_payment>yes</t:accept_payment>")
}

func TestAuthorizeHandler_WithoutSiteOrderIdentifier(t *testing.T) {
	// site_order_identifier is optional. A request that legitimately omits
	// it is still signature-valid and gets a protocol response; the default
	// policy declines the empty identifier.
	handler := NewAuthorizeHandler(newService(), zap.NewNop())

	rec := get(t, handler.Handle, "/authorize", signedQuery(map[string]string{
		"site_order_identifier": "",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<t:accept_payment>no</t:accept_payment>")
}

func TestAuthorizeHandler_MethodNotAllowed(t *testing.T) {
	handler := NewAuthorizeHandler(newService(), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(""))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestConfirmHandler_EchoesIdentifier(t *testing.T) {
	handler := NewConfirmHandler(newService(), zap.NewNop())

	// Identifier with XML-hostile characters must round-trip escaped but
	// semantically byte-for-byte.
	id := `PNM <7&9> "x"`
	rec := get(t, handler.Handle, "/confirm", signedQuery(map[string]string{
		"pnm_order_identifier": id,
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))

	var doc struct {
		Confirmation struct {
			PNMOrderIdentifier string `xml:"pnm_order_identifier"`
		} `xml:"confirmation"`
	}
	require.NoError(t, decodeBody(rec.Body.Bytes(), &doc))
	assert.Equal(t, id, doc.Confirmation.PNMOrderIdentifier)
	assert.Contains(t, rec.Body.String(), "<t:payment_confirmation_response")
}

func TestConfirmHandler_DuplicateDelivery(t *testing.T) {
	handler := NewConfirmHandler(newService(), zap.NewNop())
	params := signedQuery(map[string]string{"pnm_payment_identifier": "PAY-1"})

	first := get(t, handler.Handle, "/confirm", params)
	second := get(t, handler.Handle, "/confirm", params)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String(),
		"duplicates get an acknowledgment indistinguishable from the first")
}

func TestConfirmHandler_MissingPNMOrderIdentifier(t *testing.T) {
	handler := NewConfirmHandler(newService(), zap.NewNop())

	rec := get(t, handler.Handle, "/confirm", signedQuery(map[string]string{
		"pnm_order_identifier": "",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmHandler_InvalidSignature(t *testing.T) {
	handler := NewConfirmHandler(newService(), zap.NewNop())

	params := signedQuery(nil)
	params.Set("signature", "deadbeefdeadbeefdeadbeefdeadbeef")
	rec := get(t, handler.Handle, "/confirm", params)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestConfirmHandler_LedgerUnavailable(t *testing.T) {
	stub := stubService{err: &domain.TransientStorageError{
		Op:  "ledger.check_and_record",
		Err: errors.New("connection refused"),
	}}
	handler := NewConfirmHandler(stub, zap.NewNop())

	rec := get(t, handler.Handle, "/confirm", signedQuery(nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Body.String(), "no protocol body on storage failure")
}

func TestConfirmHandler_UnexpectedError(t *testing.T) {
	stub := stubService{err: fmt.Errorf("record payment PAY-1: %w", errors.New("downstream down"))}
	handler := NewConfirmHandler(stub, zap.NewNop())

	rec := get(t, handler.Handle, "/confirm", signedQuery(nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandlers_InterceptedOverride(t *testing.T) {
	override := &domain.Override{
		ContentType: "text/plain",
		Body:        []byte("parked for maintenance"),
	}
	stub := stubService{result: &domain.Result{
		Outcome:  domain.OutcomeIntercepted,
		Override: override,
	}}

	for name, handle := range map[string]http.HandlerFunc{
		"authorize": NewAuthorizeHandler(stub, zap.NewNop()).Handle,
		"confirm":   NewConfirmHandler(stub, zap.NewNop()).Handle,
	} {
		t.Run(name, func(t *testing.T) {
			rec := get(t, handle, "/"+name, signedQuery(nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
			assert.Equal(t, "parked for maintenance", rec.Body.String())
		})
	}
}
