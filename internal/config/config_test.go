package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestOverlayEnv(t *testing.T) {
	cfg := Default()
	err := cfg.overlayEnv(envMap(map[string]string{
		"STORE_DRIVER":      "memory",
		"POS_TAX_RATE":      "0.16",
		"MPESA_ENABLED":     "true",
		"MPESA_TIMEOUT":     "10s",
		"KAFKA_BROKERS":     "k1:9092, k2:9092,",
		"OUTBOX_BATCH_SIZE": "25",
	}))
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.True(t, cfg.MPesa.Enabled)
	assert.Equal(t, 10*time.Second, cfg.MPesa.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 25, cfg.Outbox.BatchSize)

	rate, err := cfg.POS.TaxRateRat()
	require.NoError(t, err)
	assert.Equal(t, 0, rate.Cmp(big.NewRat(16, 100)))
}

func TestOverlayEnv_ReportsMalformedValues(t *testing.T) {
	cfg := Default()
	err := cfg.overlayEnv(envMap(map[string]string{
		"MPESA_ENABLED":     "yes please",
		"OUTBOX_BATCH_SIZE": "many",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MPESA_ENABLED")
	assert.Contains(t, err.Error(), "OUTBOX_BATCH_SIZE")
}

func TestOverlayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_port: "8181"
pos:
  tax_rate: "0.16"
  cash_underpayment: reject
mpesa:
  enabled: true
  environment: production
  consumer_key: key
  consumer_secret: secret
  shortcode: "174379"
  passkey: pass
  callback_url: https://pos.example.com/api/v1/payments/mpesa/callback
  timeout: 15s
`), 0o600))

	cfg := Default()
	require.NoError(t, cfg.overlayFile(path))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8181", cfg.HTTPPort)
	assert.Equal(t, "reject", cfg.POS.CashUnderpayment)
	assert.Equal(t, 15*time.Second, cfg.MPesa.Timeout)
	assert.Equal(t, "https://api.safaricom.co.ke", cfg.MPesa.ResolvedBaseURL())
	// Untouched sections keep their defaults.
	assert.Equal(t, "9090", cfg.GRPCPort)
}

func TestValidate(t *testing.T) {
	t.Run("mpesa enabled without credentials", func(t *testing.T) {
		cfg := Default()
		cfg.MPesa.Enabled = true
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MPESA_CONSUMER_KEY")
		assert.Contains(t, err.Error(), "MPESA_CALLBACK_URL")
	})

	t.Run("unknown store driver", func(t *testing.T) {
		cfg := Default()
		cfg.Store.Driver = "postgres"
		assert.Error(t, cfg.Validate())
	})

	t.Run("tax rate out of range", func(t *testing.T) {
		cfg := Default()
		cfg.POS.TaxRate = "1.5"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad underpayment policy", func(t *testing.T) {
		cfg := Default()
		cfg.POS.CashUnderpayment = "sometimes"
		assert.Error(t, cfg.Validate())
	})
}

func TestResolvedBaseURL(t *testing.T) {
	assert.Equal(t, "https://sandbox.safaricom.co.ke", MPesaConfig{Environment: EnvSandbox}.ResolvedBaseURL())
	assert.Equal(t, "http://127.0.0.1:9999", MPesaConfig{BaseURL: "http://127.0.0.1:9999/"}.ResolvedBaseURL())
}
