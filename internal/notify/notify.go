// Package notify fans out "orders changed" events to the components that
// render order state: a Redis channel and the stock message table.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OrdersChangedEvent is the message published on the refresh channel.
type OrdersChangedEvent struct {
	Event   string    `json:"event"`
	OrderID string    `json:"order_id"`
	At      time.Time `json:"at"`
}

// RedisPublisher publishes refresh events on a Redis pub/sub channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) NotifyOrdersChanged(ctx context.Context, orderID string) error {
	payload, err := json.Marshal(OrdersChangedEvent{Event: "orders_changed", OrderID: orderID, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}

// StockFlagger is implemented by repository.StockMessageRepository.
type StockFlagger interface {
	FlagAllForRefresh(ctx context.Context) (int64, error)
}

// StockMessageFlagger marks every stock message for re-render.
type StockMessageFlagger struct {
	repo   StockFlagger
	logger *zap.Logger
}

func NewStockMessageFlagger(repo StockFlagger, logger *zap.Logger) *StockMessageFlagger {
	return &StockMessageFlagger{repo: repo, logger: logger}
}

func (f *StockMessageFlagger) NotifyOrdersChanged(ctx context.Context, orderID string) error {
	n, err := f.repo.FlagAllForRefresh(ctx)
	if err != nil {
		return fmt.Errorf("flag stock messages: %w", err)
	}
	f.logger.Debug("Stock messages flagged", zap.String("order_id", orderID), zap.Int64("rows", n))
	return nil
}

// Sink is one refresh target.
type Sink interface {
	NotifyOrdersChanged(ctx context.Context, orderID string) error
}

// Multi notifies every sink, even after one fails.
type Multi []Sink

func (m Multi) NotifyOrdersChanged(ctx context.Context, orderID string) error {
	var errs []error
	for _, s := range m {
		if err := s.NotifyOrdersChanged(ctx, orderID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
