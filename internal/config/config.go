package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config collects everything main needs to wire the storefront. Values come
// from an optional YAML file (CONFIG_FILE) with env vars taking precedence,
// so a bare env-only deployment keeps working.
type Config struct {
	Port            string `yaml:"port"`
	BaseURL         string `yaml:"base_url"`
	DatabaseURL     string `yaml:"database_url"`
	PaymentProvider string `yaml:"payment_provider"` // square | stripe

	Square struct {
		BaseURL     string `yaml:"base_url"`
		AccessToken string `yaml:"access_token"`
		LocationID  string `yaml:"location_id"`
	} `yaml:"square"`

	Stripe struct {
		SecretKey     string `yaml:"secret_key"`
		WebhookSecret string `yaml:"webhook_secret"`
	} `yaml:"stripe"`

	Resend struct {
		APIKey        string `yaml:"api_key"`
		From          string `yaml:"from"`
		MerchantEmail string `yaml:"merchant_email"`
	} `yaml:"resend"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	cfg.Port = "8080"
	cfg.BaseURL = "http://localhost:8080"
	cfg.PaymentProvider = "square"
	cfg.Square.BaseURL = "https://connect.squareup.com"
	cfg.Resend.From = "Oillabz <noreply@oillabz.dev>"

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, err
		}
	}

	override(&cfg.Port, "PORT")
	override(&cfg.BaseURL, "BASE_URL")
	override(&cfg.DatabaseURL, "DATABASE_URL")
	override(&cfg.PaymentProvider, "PAYMENT_PROVIDER")
	override(&cfg.Square.BaseURL, "SQUARE_BASE_URL")
	override(&cfg.Square.AccessToken, "SQUARE_ACCESS_TOKEN")
	override(&cfg.Square.LocationID, "SQUARE_LOCATION_ID")
	override(&cfg.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	override(&cfg.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
	override(&cfg.Resend.APIKey, "RESEND_API_KEY")
	override(&cfg.Resend.From, "RESEND_FROM")
	override(&cfg.Resend.MerchantEmail, "ORDER_ALERT_EMAIL")

	return cfg, nil
}

func override(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
