package payment

import (
	"context"
	"strings"

	"paycallback/internal/config"
	"paycallback/internal/pkg/utils"
)

const dokuSignaturePrefix = "HMACSHA256="

type dokuPayload struct {
	Order struct {
		InvoiceNumber string `json:"invoice_number" validate:"required"`
		Amount        Amount `json:"amount"`
		Currency      string `json:"currency"`
	} `json:"order"`
	Transaction struct {
		Status            string `json:"status" validate:"required"`
		Date              string `json:"date"`
		OriginalRequestID string `json:"original_request_id"`
	} `json:"transaction"`
}

// DokuAdapter verifies the DOKU notification signature: an HMAC-SHA256 over
// the Client-Id, Request-Id, Request-Timestamp, Request-Target and Digest
// components, sent as "HMACSHA256=<base64>" in the Signature header.
type DokuAdapter struct {
	cfg config.DokuConfig
}

func NewDokuAdapter(cfg config.DokuConfig) *DokuAdapter {
	return &DokuAdapter{cfg: cfg}
}

func (a *DokuAdapter) Name() string {
	return "doku"
}

func (a *DokuAdapter) Parse(env *Envelope) (*ParsedCallback, error) {
	var p dokuPayload
	if err := decodePayload(a.Name(), env, &p); err != nil {
		return nil, err
	}
	return &ParsedCallback{
		ExternalOrderID: p.Order.InvoiceNumber,
		ClaimedAmount:   p.Order.Amount.String(),
		RawStatus:       p.Transaction.Status,
		Signature:       env.Header("Signature"),
		payload:         &p,
	}, nil
}

func (a *DokuAdapter) Authenticate(_ context.Context, env *Envelope, parsed *ParsedCallback) VerificationResult {
	if a.cfg.SecretKey == "" {
		return rejected("doku secret key not configured", "", "")
	}
	if parsed.Signature == "" {
		return rejected("missing Signature header", "", "")
	}
	clientID := env.Header("Client-Id")
	if a.cfg.ClientID != "" && !utils.SecureEqual(a.cfg.ClientID, clientID) {
		return rejected("unexpected Client-Id", a.cfg.ClientID, clientID)
	}

	expected := DokuSignature(a.cfg.SecretKey, clientID, env.Header("Request-Id"),
		env.Header("Request-Timestamp"), env.Path, env.RawBody)
	if !utils.SecureEqual(expected, strings.TrimSpace(parsed.Signature)) {
		return rejected("invalid signature", expected, parsed.Signature)
	}
	return verified()
}

// DokuSignature computes the Signature header value for a notification.
func DokuSignature(secret, clientID, requestID, timestamp, target string, body []byte) string {
	components := strings.Join([]string{
		"Client-Id:" + clientID,
		"Request-Id:" + requestID,
		"Request-Timestamp:" + timestamp,
		"Request-Target:" + target,
		"Digest:" + utils.SHA256Base64(body),
	}, "\n")
	return dokuSignaturePrefix + utils.HMACSHA256Base64(secret, []byte(components))
}

func (a *DokuAdapter) MapStatus(raw string) Outcome {
	switch {
	case raw == "SUCCESS":
		return OutcomePaid
	case statusIn(raw, "FAILED", "EXPIRED"):
		return OutcomeCancelled
	default:
		return OutcomeIgnored
	}
}

func (a *DokuAdapter) AckBody(ok bool, message string) map[string]interface{} {
	return statusBody(ok, message)
}
