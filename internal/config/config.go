package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Database  Database  `envPrefix:"DB_"`
	Auth      Auth      `envPrefix:"JWT_"`
	Pricing   Pricing   `envPrefix:"PRICING_"`
	Checkout  Checkout  `envPrefix:"CHECKOUT_"`
	Reconcile Reconcile `envPrefix:"RECONCILE_"`
	Gift      Gift      `envPrefix:"GIFT_"`

	Paypal    Paypal    `envPrefix:"PAYPAL_"`
	BrainTree Braintree `envPrefix:"BRAINTREE_"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // mysql, postgres, sqlite
	URL    string `env:"URL" envDefault:"bookstore.db"`
}

type Auth struct {
	Secret string        `env:"SECRET,required,notEmpty"` // signs access tokens, no default
	TTL    time.Duration `env:"TTL" envDefault:"24h"`
}

// Pricing amounts are in the store currency.
type Pricing struct {
	RentDefaultDays       int     `env:"RENT_DEFAULT_DAYS" envDefault:"30"`
	RentDefaultMultiplier float64 `env:"RENT_DEFAULT_MULTIPLIER" envDefault:"0.35"`
	RentCustomMultiplier  float64 `env:"RENT_CUSTOM_MULTIPLIER" envDefault:"0.50"`
	ShippingStandard      float64 `env:"SHIPPING_STANDARD" envDefault:"30.00"`
	ShippingExpress       float64 `env:"SHIPPING_EXPRESS" envDefault:"60.00"`
	ShippingPriority      float64 `env:"SHIPPING_PRIORITY" envDefault:"100.00"`
	CODFee                float64 `env:"COD_FEE" envDefault:"15.00"`
}

type Checkout struct {
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Reconcile struct {
	Interval time.Duration `env:"INTERVAL" envDefault:"1m"`
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
}

type Gift struct {
	RequireClaim bool `env:"REQUIRE_CLAIM" envDefault:"true"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	WebhookID    string `env:"WEBHOOK_ID"`
	Currency     string `env:"CURRENCY" envDefault:"USD"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT" envDefault:"sandbox"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
