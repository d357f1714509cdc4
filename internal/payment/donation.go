package payment

import (
	"strconv"
	"strings"

	"paycallback/internal/pkg/utils"
)

const DonationRoute = "donate"

// Donation is a balance top-up reported by the donation channel. It does not
// touch the order ledger.
type Donation struct {
	GrowID string
	Amount int64
}

type donationPayload struct {
	GrowID string `json:"growId" validate:"required"`
	Amount Amount `json:"amount" validate:"required"`
}

// DonationChannel parses donation callbacks. When a token is configured the
// X-Donate-Token header must carry it.
type DonationChannel struct {
	token string
}

func NewDonationChannel(token string) *DonationChannel {
	return &DonationChannel{token: token}
}

func (d *DonationChannel) Parse(env *Envelope) (*Donation, error) {
	var p donationPayload
	if err := decodePayload(DonationRoute, env, &p); err != nil {
		return nil, err
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(p.Amount.String()), 10, 64)
	if err != nil || amount <= 0 {
		return nil, &RejectionError{
			Kind:     ErrMalformedPayload,
			Provider: DonationRoute,
			Reason:   "amount must be a positive integer",
			Received: p.Amount.String(),
			Err:      err,
		}
	}
	return &Donation{GrowID: p.GrowID, Amount: amount}, nil
}

func (d *DonationChannel) Authenticate(env *Envelope) error {
	if d.token == "" {
		return nil
	}
	received := env.Header("X-Donate-Token")
	if !utils.SecureEqual(d.token, received) {
		return &RejectionError{
			Kind:     ErrAuthenticationFailed,
			Provider: DonationRoute,
			Reason:   "invalid donate token",
			Expected: utils.Fingerprint(d.token),
			Received: utils.Fingerprint(received),
		}
	}
	return nil
}

func (d *DonationChannel) AckBody(ok bool) map[string]interface{} {
	if ok {
		return map[string]interface{}{"status": "success", "message": "Balance updated"}
	}
	return map[string]interface{}{"status": "error", "message": "User or rate not found"}
}
