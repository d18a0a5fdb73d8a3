package callbacks

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
)

// Namespace of the PayNearMe callback response documents. The processor's
// parser requires the t: prefix on every element.
const callbacksNamespace = "http://www.paynearme.com/api_callbacks"

type authorizationResponse struct {
	XMLName       xml.Name          `xml:"t:payment_authorization_response"`
	Namespace     string            `xml:"xmlns:t,attr"`
	Authorization authorizationBody `xml:"t:authorization"`
}

type authorizationBody struct {
	PNMOrderIdentifier string `xml:"t:pnm_order_identifier"`
	AcceptPayment      string `xml:"t:accept_payment"`
	Receipt            string `xml:"t:receipt"`
	Memo               string `xml:"t:memo"`
}

type confirmationResponse struct {
	XMLName      xml.Name         `xml:"t:payment_confirmation_response"`
	Namespace    string           `xml:"xmlns:t,attr"`
	Confirmation confirmationBody `xml:"t:confirmation"`
}

type confirmationBody struct {
	PNMOrderIdentifier string `xml:"t:pnm_order_identifier"`
}

// buildAuthorizationResponse renders the /authorize decision. Identifiers
// are echoed exactly as received; receipt and memo carry the human-readable
// texts the processor prints on the payment slip.
func buildAuthorizationResponse(res *domain.Result, now time.Time) authorizationResponse {
	accept := "no"
	receipt := "Order declined"
	memo := fmt.Sprintf("Invalid Payment: %s", res.SiteOrderIdentifier)
	if res.Accept {
		accept = "yes"
		receipt = "Thank you for your order"
		memo = now.Format(time.RFC3339)
	}

	return authorizationResponse{
		Namespace: callbacksNamespace,
		Authorization: authorizationBody{
			PNMOrderIdentifier: res.PNMOrderIdentifier,
			AcceptPayment:      accept,
			Receipt:            receipt,
			Memo:               memo,
		},
	}
}

// buildConfirmationResponse renders the /confirm acknowledgment: an
// identifier echo only, the same for first deliveries and duplicates.
func buildConfirmationResponse(res *domain.Result) confirmationResponse {
	return confirmationResponse{
		Namespace: callbacksNamespace,
		Confirmation: confirmationBody{
			PNMOrderIdentifier: res.PNMOrderIdentifier,
		},
	}
}

func writeXML(w http.ResponseWriter, doc interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		logger.Error("Failed to write XML header", zap.Error(err))
		return
	}
	if err := xml.NewEncoder(w).Encode(doc); err != nil {
		logger.Error("Failed to encode XML response", zap.Error(err))
	}
}

func writeOverride(w http.ResponseWriter, override *domain.Override, logger *zap.Logger) {
	contentType := override.ContentType
	if contentType == "" {
		contentType = "application/xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(override.Body); err != nil {
		logger.Error("Failed to write override response", zap.Error(err))
	}
}
