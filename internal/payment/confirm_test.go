package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycallback/internal/config"
)

func jsonServer(t *testing.T, check func(r *http.Request), body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func pakasirBody(orderID string, amount int, status string) map[string]interface{} {
	return map[string]interface{}{
		"transaction": map[string]interface{}{
			"order_id": orderID, "amount": amount, "project": "shop", "status": status,
		},
	}
}

func TestPakasirConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		outcome Outcome
		wantErr error
	}{
		{"completed", `{"transaction":{"order_id":"ORD-7","amount":30000,"status":"completed"}}`, OutcomePaid, nil},
		{"expired", `{"transaction":{"order_id":"ORD-7","amount":30000,"status":"expired"}}`, OutcomeCancelled, nil},
		{"pending is rejected", `{"transaction":{"order_id":"ORD-7","amount":30000,"status":"pending"}}`, "", ErrAuthenticationFailed},
		{"not found", `{"transaction":null}`, "", ErrAuthenticationFailed},
		{"amount mismatch", `{"transaction":{"order_id":"ORD-7","amount":1000,"status":"completed"}}`, "", ErrAuthenticationFailed},
		{"order mismatch", `{"transaction":{"order_id":"ORD-8","amount":30000,"status":"completed"}}`, "", ErrAuthenticationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, func(r *http.Request) {
				assert.Equal(t, "/api/transactiondetail", r.URL.Path)
				assert.Equal(t, "shop", r.URL.Query().Get("project"))
				assert.Equal(t, "ORD-7", r.URL.Query().Get("order_id"))
				assert.Equal(t, "30000", r.URL.Query().Get("amount"))
				assert.Equal(t, "pkey", r.URL.Query().Get("api_key"))
			}, tt.reply)

			a := NewPakasirAdapter(config.PakasirConfig{ProjectSlug: "shop", APIKey: "pkey", BaseURL: srv.URL}, testConfirmClient())
			res, err := testResolver().Resolve(context.Background(), a, envelope(t, "pakasir", pakasirBody("ORD-7", 30000, "completed"), nil))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, res.Outcome)
		})
	}
}

func TestPakasirRejectsForeignProject(t *testing.T) {
	called := false
	srv := jsonServer(t, func(*http.Request) { called = true }, `{}`)
	a := NewPakasirAdapter(config.PakasirConfig{ProjectSlug: "other", APIKey: "pkey", BaseURL: srv.URL}, testConfirmClient())

	_, err := testResolver().Resolve(context.Background(), a, envelope(t, "pakasir", pakasirBody("ORD-7", 30000, "completed"), nil))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.False(t, called)
}

func TestPakasirRejectsWithoutProjectSlug(t *testing.T) {
	called := false
	srv := jsonServer(t, func(*http.Request) { called = true }, `{}`)
	a := NewPakasirAdapter(config.PakasirConfig{APIKey: "pkey", BaseURL: srv.URL}, testConfirmClient())

	_, err := testResolver().Resolve(context.Background(), a, envelope(t, "pakasir", pakasirBody("ORD-7", 30000, "completed"), nil))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.False(t, called)
}

func qrispwCallback(t *testing.T, secret string, amount int) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{
		"transaction_id": "TRX-9", "order_id": "ORD-9", "amount": amount,
		"status": "paid", "timestamp": 1700000000,
	}
	env := envelope(t, "qrispw", body, nil)
	sig, err := QrispwSignature(secret, env.Parsed)
	require.NoError(t, err)
	body["signature"] = sig
	return body
}

func TestQrispwConfirmationIsAuthoritative(t *testing.T) {
	srv := jsonServer(t, func(r *http.Request) {
		assert.Equal(t, "/api/check-payment.php", r.URL.Path)
		assert.Equal(t, "TRX-9", r.URL.Query().Get("transaction_id"))
		assert.Equal(t, "qkey", r.Header.Get("X-API-Key"))
		assert.Equal(t, "qsecret", r.Header.Get("X-API-Secret"))
	}, `{"success":true,"order_id":"ORD-9","amount":45000,"status":"paid"}`)
	a := NewQrispwAdapter(config.QrispwConfig{APIKey: "qkey", APISecret: "qsecret", BaseURL: srv.URL}, testConfirmClient())

	t.Run("inline match", func(t *testing.T) {
		res, err := testResolver().Resolve(context.Background(), a, envelope(t, "qrispw", qrispwCallback(t, "qsecret", 45000), nil))
		require.NoError(t, err)
		assert.Equal(t, OutcomePaid, res.Outcome)
		assert.False(t, res.Verification.InlineMismatch)
	})

	t.Run("inline mismatch accepted", func(t *testing.T) {
		body := qrispwCallback(t, "qsecret", 45000)
		body["signature"] = "0000"
		res, err := testResolver().Resolve(context.Background(), a, envelope(t, "qrispw", body, nil))
		require.NoError(t, err)
		assert.Equal(t, OutcomePaid, res.Outcome)
		assert.True(t, res.Verification.InlineMismatch)
	})

	t.Run("inline match with amount mismatch rejected", func(t *testing.T) {
		_, err := testResolver().Resolve(context.Background(), a, envelope(t, "qrispw", qrispwCallback(t, "qsecret", 99000), nil))
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}

func TestQrispwCheckFailure(t *testing.T) {
	srv := jsonServer(t, nil, `{"success":false,"error":"not found"}`)
	a := NewQrispwAdapter(config.QrispwConfig{APIKey: "qkey", APISecret: "qsecret", BaseURL: srv.URL}, testConfirmClient())

	_, err := testResolver().Resolve(context.Background(), a, envelope(t, "qrispw", qrispwCallback(t, "qsecret", 45000), nil))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.NotErrorIs(t, err, ErrVerificationUnavailable)
}

func TestQrispwExpiredIsIgnored(t *testing.T) {
	srv := jsonServer(t, nil, `{"success":true,"order_id":"ORD-9","amount":"45000","status":"expired"}`)
	a := NewQrispwAdapter(config.QrispwConfig{APIKey: "qkey", APISecret: "qsecret", BaseURL: srv.URL}, testConfirmClient())

	res, err := testResolver().Resolve(context.Background(), a, envelope(t, "qrispw", qrispwCallback(t, "qsecret", 45000), nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
}

func TestConfirmationTimeoutFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	confirm := NewConfirmationClient(50 * time.Millisecond)
	a := NewQrispwAdapter(config.QrispwConfig{APIKey: "qkey", APISecret: "qsecret", BaseURL: srv.URL}, confirm)

	start := time.Now()
	res, err := testResolver().Resolve(context.Background(), a, envelope(t, "qrispw", qrispwCallback(t, "qsecret", 45000), nil))
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.Less(t, time.Since(start), time.Second)
}

func TestConfirmationServerErrorFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	a := NewPakasirAdapter(config.PakasirConfig{ProjectSlug: "shop", APIKey: "pkey", BaseURL: srv.URL}, testConfirmClient())
	_, err := testResolver().Resolve(context.Background(), a, envelope(t, "pakasir", pakasirBody("ORD-7", 30000, "completed"), nil))
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
}
