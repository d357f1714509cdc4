package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trx-1", r.URL.Query().Get("transaction_id"))
		assert.Equal(t, "key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"paid"}`))
	}))
	defer srv.Close()

	var out struct {
		Status string `json:"status"`
	}
	err := New().GetJSON(context.Background(), srv.URL,
		map[string]string{"transaction_id": "trx-1"},
		map[string]string{"X-API-Key": "key"},
		&out)
	require.NoError(t, err)
	assert.Equal(t, "paid", out.Status)
}

func TestGetNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().WithRetries(0).Get(context.Background(), srv.URL, nil, nil)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestGetHonoursContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New().WithRetries(0).Get(ctx, srv.URL, nil, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
