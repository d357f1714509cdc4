// Package app wires the callback pipeline from configuration. Both the
// server and callbackctl build their dispatcher here.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paycallback/internal/config"
	"paycallback/internal/middleware"
	"paycallback/internal/models"
	"paycallback/internal/notify"
	"paycallback/internal/payment"
	"paycallback/internal/pkg/telegram"
	"paycallback/internal/pkg/utils"
	"paycallback/internal/repository"
	"paycallback/internal/settlement"
)

// Components holds the wired pipeline and what must be closed on shutdown.
type Components struct {
	Deps     settlement.Deps
	Redis    *redis.Client
	Reporter *telegram.Reporter
	Orders   *repository.OrderRepository
	Logs     *repository.CallbackLogRepository
}

func Build(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*Components, error) {
	orders := repository.NewOrderRepository(db)
	settings := repository.NewSettingRepository(db)
	logs := repository.NewCallbackLogRepository(db)

	c := &Components{Orders: orders, Logs: logs}

	// --- Redis (dedup + refresh channel), in-memory dedup fallback ---
	var redisClient redis.UniversalClient
	if cfg.Redis.Addr != "" {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Pass,
			DB:       cfg.Redis.DB,
		})
		redisClient = c.Redis
	}
	deduper, err := middleware.NewDeliveryDeduper(redisClient, cfg.Callback.DedupTTL)
	redisUp := c.Redis != nil && err == nil
	if err != nil {
		logger.Warn("Redis unavailable for delivery dedup, using in-memory fallback", zap.Error(err))
	}

	sinks := notify.Multi{notify.NewStockMessageFlagger(repository.NewStockMessageRepository(db), logger)}
	if redisUp {
		sinks = append(sinks, notify.NewRedisPublisher(c.Redis, cfg.Callback.RefreshChannel))
	}

	reporter, err := telegram.NewReporter(cfg.Report.BotToken, cfg.Report.ChatID)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Reporter = reporter

	c.Deps = settlement.Deps{
		Registry:  payment.NewRegistry(cfg.Payment, payment.NewConfirmationClient(cfg.Callback.VerifyTimeout)),
		Resolver:  payment.NewResolver(logger),
		Store:     settlement.NewStore(orders, logger),
		Donations: payment.NewDonationChannel(cfg.Callback.DonateToken),
		Credits:   repository.NewUserRepository(db, settings),
		Notifier:  sinks,
		Deduper:   deduper,
		Audit:     logs,
		Logger:    logger,
	}
	if reporter != nil {
		c.Deps.Reporter = reporter
	}
	return c, nil
}

// Dispatcher returns the live dispatcher.
func (c *Components) Dispatcher() *settlement.Dispatcher {
	return settlement.NewDispatcher(c.Deps)
}

// ReplayDispatcher skips delivery dedup so a stored delivery is processed
// again; the conditional update still keeps it idempotent.
func (c *Components) ReplayDispatcher() *settlement.Dispatcher {
	deps := c.Deps
	deps.Deduper = nil
	return settlement.NewDispatcher(deps)
}

func (c *Components) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// Replay processes a stored delivery again and returns its acknowledgment.
func (c *Components) Replay(ctx context.Context, id uint) (settlement.Acknowledgment, error) {
	entry, err := c.Logs.FindByID(ctx, id)
	if err != nil {
		return settlement.Acknowledgment{}, fmt.Errorf("load callback log %d: %w", id, err)
	}
	env, err := ReplayEnvelope(entry)
	if err != nil {
		return settlement.Acknowledgment{}, err
	}

	d := c.ReplayDispatcher()
	if entry.Provider == payment.DonationRoute {
		return d.HandleDonation(ctx, env), nil
	}
	return d.Handle(ctx, entry.Provider, env), nil
}

// ReplayEnvelope rebuilds the envelope of a stored delivery under a new
// request ID.
func ReplayEnvelope(entry *models.CallbackLog) (*payment.Envelope, error) {
	headers := http.Header{}
	if len(entry.Headers) > 0 {
		if err := json.Unmarshal(entry.Headers, &headers); err != nil {
			return nil, fmt.Errorf("decode stored headers: %w", err)
		}
	}
	env, _ := payment.NewEnvelope(entry.Provider, entry.Path, headers, []byte(entry.RawBody))
	env.RequestID = utils.GenerateRequestID()
	return env, nil
}
