package payment

import (
	"bytes"
	"context"
	"encoding/json"

	"paycallback/internal/config"
	"paycallback/internal/pkg/utils"
)

type qrispwPayload struct {
	TransactionID string      `json:"transaction_id" validate:"required"`
	OrderID       string      `json:"order_id" validate:"required"`
	Amount        Amount      `json:"amount" validate:"required"`
	Status        string      `json:"status"`
	PaidAt        string      `json:"paid_at"`
	Timestamp     interface{} `json:"timestamp"`
	Signature     string      `json:"signature"`
}

// QrispwAdapter checks the inline HMAC and then always confirms the payment
// with the check-payment endpoint. The confirmation is authoritative: an
// inline mismatch is reported but does not reject a confirmed payment.
type QrispwAdapter struct {
	cfg     config.QrispwConfig
	confirm *ConfirmationClient
}

func NewQrispwAdapter(cfg config.QrispwConfig, confirm *ConfirmationClient) *QrispwAdapter {
	return &QrispwAdapter{cfg: cfg, confirm: confirm}
}

func (a *QrispwAdapter) Name() string {
	return "qrispw"
}

func (a *QrispwAdapter) Parse(env *Envelope) (*ParsedCallback, error) {
	var p qrispwPayload
	if err := decodePayload(a.Name(), env, &p); err != nil {
		return nil, err
	}
	return &ParsedCallback{
		ExternalOrderID: p.OrderID,
		ClaimedAmount:   p.Amount.String(),
		RawStatus:       p.Status,
		Signature:       p.Signature,
		payload:         &p,
	}, nil
}

func (a *QrispwAdapter) Authenticate(ctx context.Context, env *Envelope, parsed *ParsedCallback) VerificationResult {
	if a.cfg.APIKey == "" || a.cfg.APISecret == "" {
		return rejected("qrispw credentials not configured", "", "")
	}
	p := parsed.payload.(*qrispwPayload)

	res := verified()
	expected, err := QrispwSignature(a.cfg.APISecret, env.Parsed)
	if err != nil || !utils.SecureEqualFold(expected, parsed.Signature) {
		res.InlineMismatch = true
		res.Reason = "inline signature mismatch"
		res.Expected = expected
		res.Received = parsed.Signature
	}

	payment, err := a.confirm.QrispwPayment(ctx, a.cfg.BaseURL, p.TransactionID, a.cfg.APIKey, a.cfg.APISecret)
	if err != nil {
		return unavailable("qrispw payment check", err)
	}
	if !payment.Success {
		return rejected("transaction check failed: "+payment.Error, "", p.TransactionID)
	}
	res.Confirmation = &Confirmation{OrderID: payment.OrderID, Amount: payment.Amount.String(), Status: payment.Status}
	return res
}

// QrispwSignature signs the callback fields other than "signature" as compact
// JSON with sorted keys.
func QrispwSignature(secret string, fields map[string]interface{}) (string, error) {
	unsigned := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if k != "signature" {
			unsigned[k] = v
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(unsigned); err != nil {
		return "", err
	}
	return utils.HMACSHA256Hex(secret, bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// MapStatus only settles confirmed payments. Expired and failed payments are
// left for the order's own expiry.
func (a *QrispwAdapter) MapStatus(raw string) Outcome {
	if raw == "paid" {
		return OutcomePaid
	}
	return OutcomeIgnored
}

func (a *QrispwAdapter) AckBody(ok bool, message string) map[string]interface{} {
	return successBody(ok, message)
}
