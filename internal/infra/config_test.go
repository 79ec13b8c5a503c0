package infra

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_secret")
	t.Setenv("PAYSTACK_WEBHOOK_SECRET", "whsec_test")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("PAYSTACK_BASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want 8080", cfg.Port)
	}
	if cfg.PaystackBaseURL != "https://api.paystack.co" {
		t.Fatalf("PaystackBaseURL mismatch: got %q", cfg.PaystackBaseURL)
	}
	if cfg.GatewayTimeout != 15*time.Second {
		t.Fatalf("GatewayTimeout mismatch: got %s", cfg.GatewayTimeout)
	}
	if cfg.KafkaBrokers != nil {
		t.Fatalf("expected no kafka brokers, got %#v", cfg.KafkaBrokers)
	}
}

func TestLoadConfigRequiredValues(t *testing.T) {
	cases := []struct {
		name    string
		missing string
	}{
		{"database url", "DATABASE_URL"},
		{"paystack secret key", "PAYSTACK_SECRET_KEY"},
		{"paystack webhook secret", "PAYSTACK_WEBHOOK_SECRET"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.missing, "")

			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error when %s is unset", tc.missing)
			}
		})
	}
}

func TestLoadConfigKafkaBrokerList(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "broker-1:9092" || cfg.KafkaBrokers[1] != "broker-2:9092" {
		t.Fatalf("KafkaBrokers mismatch: %#v", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "donation_recorded" {
		t.Fatalf("KafkaTopic mismatch: got %q", cfg.KafkaTopic)
	}
}
