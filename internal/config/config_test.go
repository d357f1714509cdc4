package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_NAME", "ledger")
	t.Setenv("TRIPAY_PRIVATE_KEY", "tripay-private")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Callback.VerifyTimeout)
	assert.Equal(t, "orders:changed", cfg.Callback.RefreshChannel)
	assert.Equal(t, "strict", cfg.Payment.Fazz.TokenPolicy)
	assert.Equal(t, "strict", cfg.Payment.Xendit.TokenPolicy)
	assert.Equal(t, "https://app.pakasir.com", cfg.Payment.Pakasir.BaseURL)
	assert.Equal(t, "tripay-private", cfg.Payment.Tripay.PrivateKey)

	// No embedded secrets.
	assert.Empty(t, cfg.Payment.Duitku.APIKey)
	assert.Empty(t, cfg.Payment.Midtrans.ServerKey)
	assert.Empty(t, cfg.Payment.Xendit.CallbackToken)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CALLBACK_VERIFY_TIMEOUT", "3s")
	t.Setenv("XENDIT_TOKEN_POLICY", "Advisory")
	t.Setenv("QRISPW_BASE_URL", "http://localhost:9000/")
	t.Setenv("DB_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Callback.VerifyTimeout)
	assert.Equal(t, "advisory", cfg.Payment.Xendit.TokenPolicy)
	assert.Equal(t, "http://localhost:9000", cfg.Payment.Qrispw.BaseURL)
	assert.Contains(t, cfg.Database.DSN(), "sslmode=disable")
}

func TestLoadRejectsUnknownTokenPolicy(t *testing.T) {
	t.Setenv("FAZZ_TOKEN_POLICY", "lenient")

	_, err := Load()
	assert.ErrorContains(t, err, "FAZZ_TOKEN_POLICY")
}

func TestMySQLDSN(t *testing.T) {
	d := DatabaseConfig{Driver: "mysql", Host: "db", Port: "3306", Name: "ledger", User: "u", Pass: "p", Charset: "utf8mb4"}
	assert.Equal(t, "u:p@tcp(db:3306)/ledger?charset=utf8mb4&parseTime=True&loc=Local", d.DSN())
}
