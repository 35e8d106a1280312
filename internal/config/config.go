package config

import (
	"os"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

type Config struct {
	DatabaseURL         string
	Port                string
	JWTSecret           string
	StripeSecretKey     string
	StripeWebhookSecret string
	ResendAPIKey        string
	EmailFromAddress    string
	EmailFromName       string
	AdminEmail          string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string
	R2                  R2Config
}

func LoadConfig() *Config {
	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Port:                getEnv("PORT", "8080"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
		EmailFromAddress:    os.Getenv("EMAIL_FROM_ADDRESS"),
		EmailFromName:       getEnv("EMAIL_FROM_NAME", "South East Archers"),
		AdminEmail:          os.Getenv("ADMIN_EMAIL"),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "https://southeastarchers.org.uk/payment/success"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "https://southeastarchers.org.uk/payment/cancelled"),
	}

	cfg.R2.AccountID = os.Getenv("R2_ACCOUNT_ID")
	cfg.R2.AccessKeyID = os.Getenv("R2_ACCESS_KEY_ID")
	cfg.R2.SecretAccessKey = os.Getenv("R2_SECRET_ACCESS_KEY")
	cfg.R2.Bucket = os.Getenv("R2_BUCKET")

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
