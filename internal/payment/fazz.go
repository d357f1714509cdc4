package payment

import (
	"context"

	"paycallback/internal/config"
)

type fazzPayload struct {
	Data struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			Status      string `json:"status" validate:"required"`
			ReferenceID string `json:"referenceId" validate:"required"`
			Amount      Amount `json:"amount"`
			CreatedAt   string `json:"createdAt"`
			PaidAt      string `json:"paidAt"`
		} `json:"attributes"`
	} `json:"data"`
}

// FazzAdapter authenticates with the x-callback-token header under the
// configured token policy.
type FazzAdapter struct {
	cfg config.FazzConfig
}

func NewFazzAdapter(cfg config.FazzConfig) *FazzAdapter {
	return &FazzAdapter{cfg: cfg}
}

func (a *FazzAdapter) Name() string {
	return "fazz"
}

func (a *FazzAdapter) Parse(env *Envelope) (*ParsedCallback, error) {
	var p fazzPayload
	if err := decodePayload(a.Name(), env, &p); err != nil {
		return nil, err
	}
	attrs := p.Data.Attributes
	return &ParsedCallback{
		ExternalOrderID: attrs.ReferenceID,
		ClaimedAmount:   attrs.Amount.String(),
		RawStatus:       attrs.Status,
		Signature:       env.Header("X-Callback-Token"),
		payload:         &p,
	}, nil
}

func (a *FazzAdapter) Authenticate(_ context.Context, _ *Envelope, parsed *ParsedCallback) VerificationResult {
	return checkCallbackToken(a.cfg.CallbackToken, a.cfg.TokenPolicy, parsed.Signature)
}

func (a *FazzAdapter) MapStatus(raw string) Outcome {
	switch {
	case statusIn(raw, "completed", "paid"):
		return OutcomePaid
	case statusIn(raw, "expired", "failed"):
		return OutcomeCancelled
	default:
		return OutcomeIgnored
	}
}

func (a *FazzAdapter) AckBody(ok bool, message string) map[string]interface{} {
	return statusBody(ok, message)
}
