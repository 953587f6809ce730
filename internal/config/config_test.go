package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftcart/storefront-platform/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, int64(200), cfg.App.ShippingFee)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, map[string]int{"Free": 5, "Premium": 20}, cfg.Plans)
}

func TestLoadPlanLimits(t *testing.T) {
	t.Setenv("PLAN_LIMITS", "Free:3, Premium:10 ,Enterprise:100")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Free": 3, "Premium": 10, "Enterprise": 100}, cfg.Plans)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad_shipping_fee", key: "SHIPPING_FEE", value: "free"},
		{name: "bad_storage_driver", key: "STORAGE_DRIVER", value: "sqlite"},
		{name: "bad_plan_entry", key: "PLAN_LIMITS", value: "Free=5"},
		{name: "zero_ceiling", key: "PLAN_LIMITS", value: "Free:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadPostgresRequiresCredentials(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	_, err := config.Load("")
	assert.Error(t, err)

	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_NAME", "swiftcart")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
}
