package domain

// Outcome classifies how a callback was handled. It is produced by the
// callbacks service and consumed by the response layer and metrics.
type Outcome string

const (
	OutcomeAccepted         Outcome = "accepted"
	OutcomeDeclined         Outcome = "declined"
	OutcomeTestIgnored      Outcome = "test_ignored"
	OutcomeIntercepted      Outcome = "intercepted"
	OutcomeInvalidSignature Outcome = "invalid_signature"
)

// Override is a fixed alternate response supplied by a special-condition
// interceptor. When present it replaces normal protocol handling verbatim.
type Override struct {
	ContentType string
	Body        []byte
}

// Result is the callback service's decision for a single delivery. It
// carries only what the response builder needs: identifiers are echoed back
// exactly as received.
type Result struct {
	Outcome Outcome

	PNMOrderIdentifier  string
	SiteOrderIdentifier string

	// Accept is the authorize business decision. Unused for /confirm.
	Accept bool

	// Duplicate marks a /confirm that was already recorded in the ledger.
	// Duplicates are acknowledged like first deliveries.
	Duplicate bool

	Override *Override
}
