package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{"JWT_SECRET": "s3cret"}})
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Pricing.RentDefaultDays)
	assert.Equal(t, 0.35, cfg.Pricing.RentDefaultMultiplier)
	assert.Equal(t, 30.0, cfg.Pricing.ShippingStandard)
	assert.Equal(t, time.Minute, cfg.Reconcile.Interval)
	assert.Equal(t, 10*time.Second, cfg.Checkout.Timeout)
	assert.True(t, cfg.Gift.RequireClaim)
	assert.Equal(t, "8080", cfg.HTTP.Port)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{
		"JWT_SECRET":                     "s3cret",
		"JWT_TTL":                        "2h",
		"DB_DRIVER":                      "mysql",
		"DB_URL":                         "user:pass@tcp(db:3306)/books",
		"PRICING_SHIPPING_EXPRESS":       "75.5",
		"RECONCILE_INTERVAL":             "30s",
		"GIFT_REQUIRE_CLAIM":             "false",
		"PAYPAL_CLIENT_ID":               "client",
		"BRAINTREE_MERCHANT_ID":          "merchant",
		"PRICING_RENT_DEFAULT_DAYS":      "14",
		"PRICING_RENT_CUSTOM_MULTIPLIER": "0.6",
	}})
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "user:pass@tcp(db:3306)/books", cfg.Database.URL)
	assert.Equal(t, 75.5, cfg.Pricing.ShippingExpress)
	assert.Equal(t, 30*time.Second, cfg.Reconcile.Interval)
	assert.False(t, cfg.Gift.RequireClaim)
	assert.Equal(t, "client", cfg.Paypal.ClientID)
	assert.Equal(t, "merchant", cfg.BrainTree.MerchantID)
	assert.Equal(t, 14, cfg.Pricing.RentDefaultDays)
	assert.Equal(t, 0.6, cfg.Pricing.RentCustomMultiplier)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TTL)
}

func TestParse_RequiresJWTSecret(t *testing.T) {
	_, err := parse(env.Options{Environment: map[string]string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	_, err = parse(env.Options{Environment: map[string]string{"JWT_SECRET": ""}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestParse_RejectsNonPositiveRentDays(t *testing.T) {
	_, err := parse(env.Options{Environment: map[string]string{
		"JWT_SECRET":                "s3cret",
		"PRICING_RENT_DEFAULT_DAYS": "0",
	}})
	assert.Error(t, err)
}
