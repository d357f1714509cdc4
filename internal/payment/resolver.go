package payment

import (
	"context"

	"go.uber.org/zap"

	"paycallback/internal/pkg/utils"
)

// Resolution is the outcome of a verified callback.
type Resolution struct {
	Parsed       *ParsedCallback
	Verification VerificationResult
	Outcome      Outcome
}

// Resolver runs an adapter's Parse, Authenticate and MapStatus steps and
// reconciles an out-of-band confirmation with the inline payload.
type Resolver struct {
	logger *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve never writes state. On rejection the partial Resolution is returned
// with the error so callers can log what was parsed.
func (r *Resolver) Resolve(ctx context.Context, a Adapter, env *Envelope) (*Resolution, error) {
	log := r.logger.With(zap.String("provider", a.Name()), zap.String("request_id", env.RequestID))

	parsed, err := a.Parse(env)
	if err != nil {
		log.Warn("Callback payload rejected", zap.Error(err))
		return nil, err
	}
	log = log.With(zap.String("order_id", parsed.ExternalOrderID))

	v := a.Authenticate(ctx, env, parsed)
	res := &Resolution{Parsed: parsed, Verification: v, Outcome: OutcomeIgnored}
	if !v.Verified {
		kind := ErrAuthenticationFailed
		if v.Unavailable {
			kind = ErrVerificationUnavailable
		}
		rej := &RejectionError{
			Kind:     kind,
			Provider: a.Name(),
			Reason:   v.Reason,
			Expected: v.Expected,
			Received: v.Received,
		}
		log.Warn("Callback authentication failed",
			zap.String("reason", v.Reason),
			zap.String("expected", v.Expected),
			zap.String("received", v.Received),
			zap.Bool("unavailable", v.Unavailable))
		return res, rej
	}
	if v.InlineMismatch {
		log.Warn("Inline check failed, accepted",
			zap.String("reason", v.Reason),
			zap.String("expected", v.Expected),
			zap.String("received", v.Received),
			zap.Bool("confirmed", v.Confirmation != nil))
	}

	status := parsed.RawStatus
	if c := v.Confirmation; c != nil {
		if c.OrderID != parsed.ExternalOrderID {
			return res, r.mismatch(log, a.Name(), "order id mismatch", c.OrderID, parsed.ExternalOrderID)
		}
		if !utils.AmountsEqual(c.Amount, parsed.ClaimedAmount) {
			return res, r.mismatch(log, a.Name(), "amount mismatch", c.Amount, parsed.ClaimedAmount)
		}
		if c.Status != "" {
			status = c.Status
		}
	}

	res.Outcome = a.MapStatus(status)
	log.Info("Callback resolved",
		zap.String("status", status),
		zap.String("outcome", string(res.Outcome)))
	return res, nil
}

func (r *Resolver) mismatch(log *zap.Logger, provider, reason, confirmed, inline string) error {
	log.Warn("Confirmation disagrees with callback",
		zap.String("reason", reason),
		zap.String("expected", confirmed),
		zap.String("received", inline))
	return &RejectionError{
		Kind:     ErrAuthenticationFailed,
		Provider: provider,
		Reason:   reason,
		Expected: confirmed,
		Received: inline,
	}
}
