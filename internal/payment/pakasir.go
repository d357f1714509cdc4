package payment

import (
	"context"
	"fmt"

	"paycallback/internal/config"
)

type pakasirPayload struct {
	Transaction struct {
		Amount        Amount `json:"amount" validate:"required"`
		OrderID       string `json:"order_id" validate:"required"`
		Project       string `json:"project"`
		Status        string `json:"status"`
		PaymentMethod string `json:"payment_method"`
		CompletedAt   string `json:"completed_at"`
	} `json:"transaction"`
}

// PakasirAdapter carries no inline signature. Every callback is confirmed
// against the transaction detail endpoint and the confirmed status decides.
type PakasirAdapter struct {
	cfg     config.PakasirConfig
	confirm *ConfirmationClient
}

func NewPakasirAdapter(cfg config.PakasirConfig, confirm *ConfirmationClient) *PakasirAdapter {
	return &PakasirAdapter{cfg: cfg, confirm: confirm}
}

func (a *PakasirAdapter) Name() string {
	return "pakasir"
}

func (a *PakasirAdapter) Parse(env *Envelope) (*ParsedCallback, error) {
	var p pakasirPayload
	if err := decodePayload(a.Name(), env, &p); err != nil {
		return nil, err
	}
	return &ParsedCallback{
		ExternalOrderID: p.Transaction.OrderID,
		ClaimedAmount:   p.Transaction.Amount.String(),
		RawStatus:       p.Transaction.Status,
		payload:         &p,
	}, nil
}

func (a *PakasirAdapter) Authenticate(ctx context.Context, _ *Envelope, parsed *ParsedCallback) VerificationResult {
	if a.cfg.ProjectSlug == "" || a.cfg.APIKey == "" {
		return rejected("pakasir credentials not configured", "", "")
	}
	p := parsed.payload.(*pakasirPayload)
	if p.Transaction.Project != a.cfg.ProjectSlug {
		return rejected("invalid project", a.cfg.ProjectSlug, p.Transaction.Project)
	}

	tx, err := a.confirm.PakasirTransaction(ctx, a.cfg.BaseURL, a.cfg.ProjectSlug,
		parsed.ClaimedAmount, parsed.ExternalOrderID, a.cfg.APIKey)
	if err != nil {
		return unavailable("pakasir transaction lookup", err)
	}
	if tx == nil {
		return rejected("transaction not found", "", parsed.ExternalOrderID)
	}
	if !statusIn(tx.Status, "completed", "success", "paid", "failed", "expired") {
		return rejected(fmt.Sprintf("transaction status is %q", tx.Status), "", tx.Status)
	}

	orderID := tx.OrderID
	if orderID == "" {
		// The lookup is keyed by order_id, so an omitted echo is the same order.
		orderID = parsed.ExternalOrderID
	}
	res := verified()
	res.Confirmation = &Confirmation{OrderID: orderID, Amount: tx.Amount.String(), Status: tx.Status}
	return res
}

func (a *PakasirAdapter) MapStatus(raw string) Outcome {
	switch {
	case statusIn(raw, "completed", "success", "paid"):
		return OutcomePaid
	case statusIn(raw, "failed", "expired"):
		return OutcomeCancelled
	default:
		return OutcomeIgnored
	}
}

func (a *PakasirAdapter) AckBody(ok bool, message string) map[string]interface{} {
	return statusBody(ok, message)
}
