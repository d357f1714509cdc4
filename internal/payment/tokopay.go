package payment

import (
	"context"

	"paycallback/internal/config"
	"paycallback/internal/pkg/utils"
)

type tokopayPayload struct {
	TrxID       string `json:"trx_id"`
	MerchantRef string `json:"merchant_ref" validate:"required"`
	Status      string `json:"status" validate:"required"`
	Amount      Amount `json:"amount"`
	Signature   string `json:"signature" validate:"required"`
}

// TokopayAdapter verifies md5(merchantId + secret + merchant_ref).
type TokopayAdapter struct {
	cfg config.TokopayConfig
}

func NewTokopayAdapter(cfg config.TokopayConfig) *TokopayAdapter {
	return &TokopayAdapter{cfg: cfg}
}

func (a *TokopayAdapter) Name() string {
	return "tokopay"
}

func (a *TokopayAdapter) Parse(env *Envelope) (*ParsedCallback, error) {
	var p tokopayPayload
	if err := decodePayload(a.Name(), env, &p); err != nil {
		return nil, err
	}
	return &ParsedCallback{
		ExternalOrderID: p.MerchantRef,
		ClaimedAmount:   p.Amount.String(),
		RawStatus:       p.Status,
		Signature:       p.Signature,
		payload:         &p,
	}, nil
}

func (a *TokopayAdapter) Authenticate(_ context.Context, _ *Envelope, parsed *ParsedCallback) VerificationResult {
	if a.cfg.MerchantID == "" || a.cfg.Secret == "" {
		return rejected("tokopay credentials not configured", "", "")
	}
	expected := utils.MD5Hex(a.cfg.MerchantID, a.cfg.Secret, parsed.ExternalOrderID)
	if !utils.SecureEqualFold(expected, parsed.Signature) {
		return rejected("invalid signature", expected, parsed.Signature)
	}
	return verified()
}

func (a *TokopayAdapter) MapStatus(raw string) Outcome {
	switch {
	case statusIn(raw, "Success", "Paid"):
		return OutcomePaid
	case statusIn(raw, "Failed", "Expired"):
		return OutcomeCancelled
	default:
		return OutcomeIgnored
	}
}

func (a *TokopayAdapter) AckBody(ok bool, message string) map[string]interface{} {
	return statusBody(ok, message)
}
