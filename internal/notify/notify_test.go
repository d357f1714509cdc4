package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paycallback/internal/models"
	"paycallback/internal/repository"
	"paycallback/internal/testutil"
)

func TestRedisPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "orders:changed")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, NewRedisPublisher(client, "orders:changed").NotifyOrdersChanged(ctx, "ORD-1"))

	select {
	case msg := <-sub.Channel():
		var ev OrdersChangedEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, "orders_changed", ev.Event)
		assert.Equal(t, "ORD-1", ev.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}

func TestRedisPublisherDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	err := NewRedisPublisher(client, "orders:changed").NotifyOrdersChanged(context.Background(), "ORD-1")
	assert.Error(t, err)
}

func TestStockMessageFlagger(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	require.NoError(t, db.Create(&models.StockMessage{ChannelID: "c1", MessageID: "m1"}).Error)

	f := NewStockMessageFlagger(repository.NewStockMessageRepository(db), zap.NewNop())
	require.NoError(t, f.NotifyOrdersChanged(ctx, "ORD-1"))

	var msg models.StockMessage
	require.NoError(t, db.First(&msg).Error)
	assert.True(t, msg.NeedsRefresh)
}

type sinkFunc func(ctx context.Context, orderID string) error

func (f sinkFunc) NotifyOrdersChanged(ctx context.Context, orderID string) error {
	return f(ctx, orderID)
}

func TestMultiNotifiesAll(t *testing.T) {
	calls := 0
	ok := sinkFunc(func(context.Context, string) error { calls++; return nil })
	bad := sinkFunc(func(context.Context, string) error { calls++; return errors.New("down") })

	err := Multi{bad, ok}.NotifyOrdersChanged(context.Background(), "ORD-1")
	assert.EqualError(t, err, "down")
	assert.Equal(t, 2, calls)
	assert.NoError(t, Multi{ok}.NotifyOrdersChanged(context.Background(), "ORD-1"))
}
