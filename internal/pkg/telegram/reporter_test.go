package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"paycallback/internal/payment"
	"paycallback/internal/settlement"
)

func TestReporterSendsHTML(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`))
	}))
	defer srv.Close()

	r, err := newReporter(tele.Settings{URL: srv.URL, Token: "test-token", Offline: true}, 42)
	require.NoError(t, err)
	require.NotNil(t, r)

	err = r.ReportSettlement(context.Background(), settlement.SettlementEvent{
		Provider: "tripay", OrderID: "ORD-<1>", Outcome: payment.OutcomePaid, Amount: "50000", At: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Contains(t, got["text"], "ORD-&lt;1&gt;")
}

func TestDisabledReporter(t *testing.T) {
	r, err := NewReporter("", 0)
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.NoError(t, r.ReportText(context.Background(), "dropped"))
}
