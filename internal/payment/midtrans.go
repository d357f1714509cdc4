package payment

import (
	"context"

	"paycallback/internal/config"
	"paycallback/internal/pkg/utils"
)

type midtransPayload struct {
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status" validate:"required"`
	StatusCode        string `json:"status_code" validate:"required"`
	SignatureKey      string `json:"signature_key" validate:"required"`
	OrderID           string `json:"order_id" validate:"required"`
	GrossAmount       Amount `json:"gross_amount" validate:"required"`
	FraudStatus       string `json:"fraud_status"`
}

// MidtransAdapter verifies sha512(order_id + status_code + gross_amount + serverKey).
type MidtransAdapter struct {
	cfg config.MidtransConfig
}

func NewMidtransAdapter(cfg config.MidtransConfig) *MidtransAdapter {
	return &MidtransAdapter{cfg: cfg}
}

func (a *MidtransAdapter) Name() string {
	return "midtrans"
}

func (a *MidtransAdapter) Parse(env *Envelope) (*ParsedCallback, error) {
	var p midtransPayload
	if err := decodePayload(a.Name(), env, &p); err != nil {
		return nil, err
	}
	return &ParsedCallback{
		ExternalOrderID: p.OrderID,
		ClaimedAmount:   p.GrossAmount.String(),
		RawStatus:       p.TransactionStatus,
		Signature:       p.SignatureKey,
		payload:         &p,
	}, nil
}

func (a *MidtransAdapter) Authenticate(_ context.Context, _ *Envelope, parsed *ParsedCallback) VerificationResult {
	if a.cfg.ServerKey == "" {
		return rejected("midtrans server key not configured", "", "")
	}
	p := parsed.payload.(*midtransPayload)
	expected := utils.SHA512Hex(p.OrderID, p.StatusCode, p.GrossAmount.String(), a.cfg.ServerKey)
	if !utils.SecureEqualFold(expected, parsed.Signature) {
		return rejected("invalid signature", expected, parsed.Signature)
	}
	return verified()
}

func (a *MidtransAdapter) MapStatus(raw string) Outcome {
	switch {
	case statusIn(raw, "settlement", "capture"):
		return OutcomePaid
	case statusIn(raw, "deny", "cancel", "expire", "failure"):
		return OutcomeCancelled
	default:
		return OutcomeIgnored
	}
}

func (a *MidtransAdapter) AckBody(ok bool, message string) map[string]interface{} {
	return statusBody(ok, message)
}
