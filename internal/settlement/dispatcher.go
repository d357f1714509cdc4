package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"paycallback/internal/models"
	"paycallback/internal/payment"
	"paycallback/internal/pkg/utils"
)

// Notifier is told when paid orders change what the storefront should show.
type Notifier interface {
	NotifyOrdersChanged(ctx context.Context, orderID string) error
}

// BalanceCreditor credits a donation to the user owning an external id.
// It reports false when the user does not exist.
type BalanceCreditor interface {
	CreditByExternalUser(ctx context.Context, userRef string, amount int64) (bool, error)
}

// SettlementEvent describes one applied order transition.
type SettlementEvent struct {
	Provider  string
	OrderID   string
	Outcome   payment.Outcome
	Amount    string
	RequestID string
	At        time.Time
}

// Reporter posts applied transitions to an operator channel.
type Reporter interface {
	ReportSettlement(ctx context.Context, event SettlementEvent) error
}

// DeliveryDeduper remembers deliveries that were fully processed.
type DeliveryDeduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Remember(ctx context.Context, key string) error
}

// CallbackLogger stores one audit row per delivery.
type CallbackLogger interface {
	Record(ctx context.Context, entry *models.CallbackLog) error
}

// Acknowledgment is the HTTP answer for a gateway.
type Acknowledgment struct {
	HTTPStatus int
	Body       map[string]interface{}
}

// Deps groups the dispatcher's collaborators. Notifier, Reporter, Deduper and
// Audit are optional.
type Deps struct {
	Registry  *payment.Registry
	Resolver  *payment.Resolver
	Store     *Store
	Donations *payment.DonationChannel
	Credits   BalanceCreditor
	Notifier  Notifier
	Reporter  Reporter
	Deduper   DeliveryDeduper
	Audit     CallbackLogger
	Logger    *zap.Logger
}

// Dispatcher turns one gateway delivery into a settlement decision and the
// acknowledgment the gateway expects.
type Dispatcher struct {
	Deps
}

func NewDispatcher(deps Deps) *Dispatcher {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Dispatcher{Deps: deps}
}

// delivery accumulates what is known about a request for the audit row.
type delivery struct {
	env       *payment.Envelope
	orderID   string
	outcome   payment.Outcome
	applied   bool
	duplicate bool
	err       error
}

func (d *Dispatcher) Handle(ctx context.Context, route string, env *payment.Envelope) Acknowledgment {
	dl := &delivery{env: env}
	ack := d.handle(ctx, route, dl)
	d.record(ctx, dl, ack)
	return ack
}

func (d *Dispatcher) handle(ctx context.Context, route string, dl *delivery) Acknowledgment {
	log := d.Logger.With(zap.String("provider", route), zap.String("request_id", dl.env.RequestID))

	adapter, err := d.Registry.Lookup(route)
	if err != nil {
		dl.err = err
		log.Warn("Callback for unknown provider")
		return Acknowledgment{
			HTTPStatus: http.StatusNotFound,
			Body:       map[string]interface{}{"status": "error", "message": "Unknown provider"},
		}
	}

	res, err := d.Resolver.Resolve(ctx, adapter, dl.env)
	if res != nil {
		dl.orderID = res.Parsed.ExternalOrderID
	}
	if err != nil {
		dl.err = err
		return rejection(adapter.AckBody, err)
	}
	dl.outcome = res.Outcome

	key := deliveryKey(route, dl.env.RawBody)
	if d.Deduper != nil {
		seen, err := d.Deduper.Seen(ctx, key)
		if err != nil {
			log.Warn("Delivery dedup lookup failed", zap.Error(err))
		} else if seen {
			dl.duplicate = true
			log.Info("Duplicate delivery", zap.String("order_id", dl.orderID))
			return Acknowledgment{HTTPStatus: http.StatusOK, Body: adapter.AckBody(true, "")}
		}
	}

	result, err := d.Store.ApplyOutcome(ctx, dl.orderID, res.Outcome)
	if err != nil {
		dl.err = err
		log.Error("Failed to apply outcome", zap.String("order_id", dl.orderID), zap.Error(err))
		return Acknowledgment{HTTPStatus: http.StatusInternalServerError, Body: adapter.AckBody(false, "Internal error")}
	}
	dl.applied = result.Applied

	if result.Applied {
		if res.Outcome == payment.OutcomePaid && d.Notifier != nil {
			if err := d.Notifier.NotifyOrdersChanged(ctx, dl.orderID); err != nil {
				log.Warn("Failed to notify refresh sink", zap.String("order_id", dl.orderID), zap.Error(err))
			}
		}
		if d.Reporter != nil {
			event := SettlementEvent{
				Provider:  route,
				OrderID:   dl.orderID,
				Outcome:   res.Outcome,
				Amount:    res.Parsed.ClaimedAmount,
				RequestID: dl.env.RequestID,
				At:        time.Now(),
			}
			if err := d.Reporter.ReportSettlement(ctx, event); err != nil {
				log.Warn("Failed to report settlement", zap.String("order_id", dl.orderID), zap.Error(err))
			}
		}
	}

	// Only a settled order makes a redelivery redundant. An ignored body may
	// settle later once the gateway's confirmation changes.
	if d.Deduper != nil && (result.Applied || result.Previous.Terminal()) {
		if err := d.Deduper.Remember(ctx, key); err != nil {
			log.Warn("Failed to remember delivery", zap.Error(err))
		}
	}
	return Acknowledgment{HTTPStatus: http.StatusOK, Body: adapter.AckBody(true, "")}
}

// HandleDonation credits a donation to the donor's balance.
func (d *Dispatcher) HandleDonation(ctx context.Context, env *payment.Envelope) Acknowledgment {
	dl := &delivery{env: env}
	ack := d.handleDonation(ctx, dl)
	d.record(ctx, dl, ack)
	return ack
}

func (d *Dispatcher) handleDonation(ctx context.Context, dl *delivery) Acknowledgment {
	log := d.Logger.With(zap.String("provider", payment.DonationRoute), zap.String("request_id", dl.env.RequestID))
	ch := d.Donations

	if err := ch.Authenticate(dl.env); err != nil {
		dl.err = err
		log.Warn("Donation rejected", zap.Error(err))
		return Acknowledgment{HTTPStatus: http.StatusUnauthorized, Body: ch.AckBody(false)}
	}
	donation, err := ch.Parse(dl.env)
	if err != nil {
		dl.err = err
		log.Warn("Donation payload rejected", zap.Error(err))
		return Acknowledgment{HTTPStatus: http.StatusOK, Body: ch.AckBody(false)}
	}
	dl.orderID = donation.GrowID

	credited, err := d.Credits.CreditByExternalUser(ctx, donation.GrowID, donation.Amount)
	if err != nil {
		dl.err = err
		log.Error("Failed to credit donation", zap.String("grow_id", donation.GrowID), zap.Error(err))
		return Acknowledgment{HTTPStatus: http.StatusInternalServerError, Body: ch.AckBody(false)}
	}
	if !credited {
		log.Warn("Donation for unknown user", zap.String("grow_id", donation.GrowID))
		return Acknowledgment{HTTPStatus: http.StatusOK, Body: ch.AckBody(false)}
	}

	dl.applied = true
	log.Info("Donation credited", zap.String("grow_id", donation.GrowID), zap.Int64("amount", donation.Amount))
	return Acknowledgment{HTTPStatus: http.StatusOK, Body: ch.AckBody(true)}
}

func rejection(ackBody func(bool, string) map[string]interface{}, err error) Acknowledgment {
	switch {
	case errors.Is(err, payment.ErrMalformedPayload):
		// The gateway decides whether to resend a payload we cannot read.
		return Acknowledgment{HTTPStatus: http.StatusOK, Body: ackBody(false, "Invalid payload")}
	case errors.Is(err, payment.ErrAuthenticationFailed):
		return Acknowledgment{HTTPStatus: http.StatusUnauthorized, Body: ackBody(false, "Verification failed")}
	default:
		return Acknowledgment{HTTPStatus: http.StatusInternalServerError, Body: ackBody(false, "Internal error")}
	}
}

func (d *Dispatcher) record(ctx context.Context, dl *delivery, ack Acknowledgment) {
	if d.Audit == nil {
		return
	}
	headers, err := json.Marshal(dl.env.Headers)
	if err != nil {
		headers = []byte("{}")
	}
	entry := &models.CallbackLog{
		RequestID:     dl.env.RequestID,
		Provider:      dl.env.Provider,
		Path:          dl.env.Path,
		OrderID:       dl.orderID,
		Outcome:       string(dl.outcome),
		Applied:       dl.applied,
		Duplicate:     dl.duplicate,
		RejectionKind: payment.KindName(dl.err),
		HTTPStatus:    ack.HTTPStatus,
		Headers:       datatypes.JSON(headers),
		RawBody:       string(dl.env.RawBody),
	}
	if dl.err != nil {
		entry.Reason = dl.err.Error()
	}
	if err := d.Audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		d.Logger.Warn("Failed to record callback log", zap.String("request_id", dl.env.RequestID), zap.Error(err))
	}
}

func deliveryKey(route string, body []byte) string {
	return route + ":" + utils.SHA256Hex(body)
}
