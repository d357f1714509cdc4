package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIAuth(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		token  string
		status int
	}{
		{"missing token", "k", "", http.StatusUnauthorized},
		{"wrong token", "k", "x", http.StatusUnauthorized},
		{"valid token", "k", "k", http.StatusOK},
		{"api disabled", "", "anything", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/orders/1", nil)
			if tt.token != "" {
				req.Header.Set("Token", tt.token)
			}
			rec := httptest.NewRecorder()
			h := APIAuth(tt.key)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
			require.NoError(t, h(e.NewContext(req, rec)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func testDeduper(t *testing.T, d DeliveryDeduper) {
	t.Helper()
	ctx := context.Background()

	seen, err := d.Seen(ctx, "tripay:abc")
	require.NoError(t, err)
	assert.False(t, seen)

	// Seen alone does not mark the key.
	seen, err = d.Seen(ctx, "tripay:abc")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, d.Remember(ctx, "tripay:abc"))
	seen, err = d.Seen(ctx, "tripay:abc")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMemoryDeliveryDeduper(t *testing.T) {
	d, err := NewDeliveryDeduper(nil, time.Minute)
	require.NoError(t, err)
	testDeduper(t, d)
}

func TestMemoryDeliveryDeduperExpires(t *testing.T) {
	d := newMemoryDeliveryDeduper(time.Millisecond)
	require.NoError(t, d.Remember(context.Background(), "k"))
	time.Sleep(5 * time.Millisecond)

	seen, err := d.Seen(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisDeliveryDeduper(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	d, err := NewDeliveryDeduper(client, time.Hour)
	require.NoError(t, err)
	testDeduper(t, d)
	assert.True(t, mr.Exists("callback:delivery:tripay:abc"))

	mr.FastForward(2 * time.Hour)
	seen, err := d.Seen(context.Background(), "tripay:abc")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisDeliveryDeduperFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	d, err := NewDeliveryDeduper(client, time.Hour)
	assert.Error(t, err)
	require.NotNil(t, d)
	testDeduper(t, d)
}
