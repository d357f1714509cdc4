package payment

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func envelope(t *testing.T, provider string, body interface{}, headers map[string]string) *Envelope {
	t.Helper()
	raw, ok := body.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	env, err := NewEnvelope(provider, "/callback/"+provider, h, raw)
	require.NoError(t, err)
	env.RequestID = "test-request"
	return env
}

func testResolver() *Resolver {
	return NewResolver(zap.NewNop())
}

func testConfirmClient() *ConfirmationClient {
	return NewConfirmationClient(2 * time.Second)
}
