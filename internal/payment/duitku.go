package payment

import (
	"context"

	"paycallback/internal/config"
	"paycallback/internal/pkg/utils"
)

type duitkuPayload struct {
	MerchantCode    string `json:"merchantCode" validate:"required"`
	Amount          Amount `json:"amount" validate:"required"`
	MerchantOrderID string `json:"merchantOrderId" validate:"required"`
	ResultCode      string `json:"resultCode" validate:"required"`
	Reference       string `json:"reference"`
	Signature       string `json:"signature" validate:"required"`
}

// DuitkuAdapter verifies md5(merchantCode + amount + merchantOrderId + apiKey).
// Result codes: 00 success, 01 pending, 02 cancelled.
type DuitkuAdapter struct {
	cfg config.DuitkuConfig
}

func NewDuitkuAdapter(cfg config.DuitkuConfig) *DuitkuAdapter {
	return &DuitkuAdapter{cfg: cfg}
}

func (a *DuitkuAdapter) Name() string {
	return "duitku"
}

func (a *DuitkuAdapter) Parse(env *Envelope) (*ParsedCallback, error) {
	var p duitkuPayload
	if err := decodePayload(a.Name(), env, &p); err != nil {
		return nil, err
	}
	return &ParsedCallback{
		ExternalOrderID: p.MerchantOrderID,
		ClaimedAmount:   p.Amount.String(),
		RawStatus:       p.ResultCode,
		Signature:       p.Signature,
		payload:         &p,
	}, nil
}

func (a *DuitkuAdapter) Authenticate(_ context.Context, _ *Envelope, parsed *ParsedCallback) VerificationResult {
	if a.cfg.MerchantCode == "" || a.cfg.APIKey == "" {
		return rejected("duitku credentials not configured", "", "")
	}
	expected := utils.MD5Hex(a.cfg.MerchantCode, parsed.ClaimedAmount, parsed.ExternalOrderID, a.cfg.APIKey)
	if !utils.SecureEqualFold(expected, parsed.Signature) {
		return rejected("invalid signature", expected, parsed.Signature)
	}
	return verified()
}

func (a *DuitkuAdapter) MapStatus(raw string) Outcome {
	switch raw {
	case "00":
		return OutcomePaid
	case "02":
		return OutcomeCancelled
	default:
		return OutcomeIgnored
	}
}

func (a *DuitkuAdapter) AckBody(ok bool, message string) map[string]interface{} {
	return statusBody(ok, message)
}
