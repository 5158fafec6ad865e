package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":                "postgres://localhost:5432/wholesale",
		"REDIS_URL":                   "redis://localhost:6379/0",
		"LOYALTY_EXCLUDED_CATEGORIES": "",
		"LOYALTY_MAX_REDEEM_BPS":      "",
		"CHECKOUT_TIMEOUT":            "",
		"PORT":                        "",
		"TENANT_REQUIRED":             "",
		"FINALIZE_LOCK_TTL":           "",
		"FLAT_TAX_BREAKER_THRESHOLD":  "",
		"FLAT_TAX_BREAKER_COOLDOWN":   "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, []string{"tobacco"}, cfg.LoyaltyExcludedCategories)
	require.Equal(t, 5000, cfg.LoyaltyMaxRedeemBps)
	require.Equal(t, 5*time.Second, cfg.CheckoutTimeout)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.False(t, cfg.TenantRequired)
	require.Equal(t, 10*time.Second, cfg.FinalizeLockTTL)
	require.Equal(t, 5, cfg.FlatTaxBreakerThreshold)
	require.Equal(t, 10*time.Second, cfg.FlatTaxBreakerCooldown)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["LOYALTY_EXCLUDED_CATEGORIES"] = "tobacco, vape ,"
	env["CHECKOUT_TIMEOUT"] = "750ms"
	env["PORT"] = ":9090"
	env["TENANT_REQUIRED"] = "true"
	env["FLAT_TAX_BREAKER_COOLDOWN"] = "30s"
	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, []string{"tobacco", "vape"}, cfg.LoyaltyExcludedCategories)
	require.Equal(t, 750*time.Millisecond, cfg.CheckoutTimeout)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.True(t, cfg.TenantRequired)
	require.Equal(t, 30*time.Second, cfg.FlatTaxBreakerCooldown)
}

func TestLoadRequiresDatabase(t *testing.T) {
	env := baseEnv()
	env["DATABASE_URL"] = ""
	_, err := LoadForTests(env)
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadRejectsRedeemCapOutOfRange(t *testing.T) {
	env := baseEnv()
	env["LOYALTY_MAX_REDEEM_BPS"] = "12000"
	_, err := LoadForTests(env)
	require.Error(t, err)
}
