package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Outcome is the canonical interpretation of a gateway status.
type Outcome string

const (
	OutcomePaid      Outcome = "Paid"
	OutcomeCancelled Outcome = "Cancelled"
	OutcomeIgnored   Outcome = "Ignored"
)

// Envelope is one inbound notification as received.
// RawBody is kept byte-exact because some schemes sign the literal payload.
type Envelope struct {
	Provider   string
	Path       string
	Headers    http.Header
	RawBody    []byte
	Parsed     map[string]interface{}
	RequestID  string
	ReceivedAt time.Time
}

// NewEnvelope decodes rawBody into the generic Parsed map. A body that is not
// a JSON object is a malformed payload.
func NewEnvelope(provider, path string, headers http.Header, rawBody []byte) (*Envelope, error) {
	env := &Envelope{
		Provider:   provider,
		Path:       path,
		Headers:    headers,
		RawBody:    rawBody,
		ReceivedAt: time.Now(),
	}
	if env.Headers == nil {
		env.Headers = http.Header{}
	}

	dec := json.NewDecoder(bytes.NewReader(rawBody))
	dec.UseNumber()
	if err := dec.Decode(&env.Parsed); err != nil || env.Parsed == nil {
		return env, &RejectionError{
			Kind:     ErrMalformedPayload,
			Provider: provider,
			Reason:   "body is not a JSON object",
			Err:      err,
		}
	}
	return env, nil
}

// Header returns the first value of a request header.
func (e *Envelope) Header(name string) string {
	return e.Headers.Get(name)
}

// ParsedCallback holds the fields every adapter extracts from its payload.
type ParsedCallback struct {
	ExternalOrderID string
	ClaimedAmount   string
	RawStatus       string
	Signature       string

	// payload is the adapter's typed decoding of the body.
	payload interface{}
}

// Confirmation is what an out-of-band lookup reported about a transaction.
type Confirmation struct {
	OrderID string
	Amount  string
	Status  string
}

// VerificationResult is the answer of an adapter's Authenticate step.
type VerificationResult struct {
	Verified bool
	Reason   string

	// Unavailable marks a failed or timed out out-of-band call.
	Unavailable bool

	// InlineMismatch is set when the inline check failed but the request was
	// still accepted: by an authoritative confirmation or an advisory policy.
	InlineMismatch bool

	Expected string
	Received string

	Confirmation *Confirmation
}

func verified() VerificationResult {
	return VerificationResult{Verified: true}
}

func rejected(reason, expected, received string) VerificationResult {
	return VerificationResult{Reason: reason, Expected: expected, Received: received}
}

func unavailable(reason string, err error) VerificationResult {
	return VerificationResult{Reason: fmt.Sprintf("%s: %v", reason, err), Unavailable: true}
}

// Amount keeps a gateway amount as the literal text it was sent as, whether
// the JSON carried a number or a string.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) String() string {
	return string(a)
}
