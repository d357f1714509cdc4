package payment

import (
	"context"

	"paycallback/internal/config"
)

type xenditPayload struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id" validate:"required"`
	QRID       string `json:"qr_id"`
	Type       string `json:"type"`
	Amount     Amount `json:"amount"`
	Status     string `json:"status" validate:"required"`
	Currency   string `json:"currency"`
}

// XenditAdapter handles QR code callbacks (ACTIVE, COMPLETED, EXPIRED).
type XenditAdapter struct {
	cfg config.XenditConfig
}

func NewXenditAdapter(cfg config.XenditConfig) *XenditAdapter {
	return &XenditAdapter{cfg: cfg}
}

func (a *XenditAdapter) Name() string {
	return "xendit"
}

func (a *XenditAdapter) Parse(env *Envelope) (*ParsedCallback, error) {
	var p xenditPayload
	if err := decodePayload(a.Name(), env, &p); err != nil {
		return nil, err
	}
	return &ParsedCallback{
		ExternalOrderID: p.ExternalID,
		ClaimedAmount:   p.Amount.String(),
		RawStatus:       p.Status,
		Signature:       env.Header("X-Callback-Token"),
		payload:         &p,
	}, nil
}

func (a *XenditAdapter) Authenticate(_ context.Context, _ *Envelope, parsed *ParsedCallback) VerificationResult {
	return checkCallbackToken(a.cfg.CallbackToken, a.cfg.TokenPolicy, parsed.Signature)
}

func (a *XenditAdapter) MapStatus(raw string) Outcome {
	switch raw {
	case "COMPLETED":
		return OutcomePaid
	case "EXPIRED":
		return OutcomeCancelled
	default:
		return OutcomeIgnored
	}
}

func (a *XenditAdapter) AckBody(ok bool, message string) map[string]interface{} {
	return statusBody(ok, message)
}
