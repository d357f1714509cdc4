package payment

import (
	"context"

	"paycallback/internal/config"
	"paycallback/internal/pkg/utils"
)

type tripayPayload struct {
	Reference   string `json:"reference"`
	MerchantRef string `json:"merchant_ref" validate:"required"`
	TotalAmount Amount `json:"total_amount" validate:"required"`
	Status      string `json:"status" validate:"required"`
	PaidAt      string `json:"paid_at"`
	Signature   string `json:"signature" validate:"required"`
}

// TripayAdapter verifies HMAC-SHA256(merchantCode + merchant_ref + total_amount)
// keyed by the private key.
type TripayAdapter struct {
	cfg config.TripayConfig
}

func NewTripayAdapter(cfg config.TripayConfig) *TripayAdapter {
	return &TripayAdapter{cfg: cfg}
}

func (a *TripayAdapter) Name() string {
	return "tripay"
}

func (a *TripayAdapter) Parse(env *Envelope) (*ParsedCallback, error) {
	var p tripayPayload
	if err := decodePayload(a.Name(), env, &p); err != nil {
		return nil, err
	}
	return &ParsedCallback{
		ExternalOrderID: p.MerchantRef,
		ClaimedAmount:   p.TotalAmount.String(),
		RawStatus:       p.Status,
		Signature:       p.Signature,
		payload:         &p,
	}, nil
}

func (a *TripayAdapter) Authenticate(_ context.Context, _ *Envelope, parsed *ParsedCallback) VerificationResult {
	if a.cfg.MerchantCode == "" || a.cfg.PrivateKey == "" {
		return rejected("tripay credentials not configured", "", "")
	}
	msg := a.cfg.MerchantCode + parsed.ExternalOrderID + parsed.ClaimedAmount
	expected := utils.HMACSHA256Hex(a.cfg.PrivateKey, []byte(msg))
	if !utils.SecureEqualFold(expected, parsed.Signature) {
		return rejected("invalid signature", expected, parsed.Signature)
	}
	return verified()
}

func (a *TripayAdapter) MapStatus(raw string) Outcome {
	switch {
	case raw == "PAID":
		return OutcomePaid
	case statusIn(raw, "EXPIRED", "FAILED"):
		return OutcomeCancelled
	default:
		return OutcomeIgnored
	}
}

func (a *TripayAdapter) AckBody(ok bool, message string) map[string]interface{} {
	return successBody(ok, message)
}
