package config

import "testing"

func TestLoadResolvesStripeKeyAlias(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_API_KEY", "sk_legacy_123")

	cfg := Load()
	if cfg.StripeSecretKey != "sk_legacy_123" {
		t.Fatalf("expected legacy alias to resolve, got %q", cfg.StripeSecretKey)
	}
}

func TestLoadPrefersCanonicalStripeKey(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_canonical")
	t.Setenv("STRIPE_API_KEY", "sk_legacy")

	cfg := Load()
	if cfg.StripeSecretKey != "sk_canonical" {
		t.Fatalf("expected canonical key to win, got %q", cfg.StripeSecretKey)
	}
}

func TestMissingRequiredListsEmptySettings(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("OPENAI_API_KEY", "key")
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_API_KEY", "")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("S3_BUCKET", "letters")

	missing := Load().MissingRequired()
	want := map[string]bool{"postgres_dsn": true, "stripe_secret_key": true}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing settings, got %v", len(want), missing)
	}
	for _, name := range missing {
		if !want[name] {
			t.Fatalf("unexpected missing setting %q in %v", name, missing)
		}
	}
}

func TestMissingRequiredSatisfiedByAlias(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/appeals")
	t.Setenv("OPENAI_API_KEY", "key")
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_API_KEY", "sk_legacy")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("S3_BUCKET", "letters")

	if missing := Load().MissingRequired(); len(missing) != 0 {
		t.Fatalf("expected no missing settings, got %v", missing)
	}
}

func TestLoadTrafficControlDefaults(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_RPS", "")
	t.Setenv("API_RATE_LIMIT_BURST", "")
	t.Setenv("API_MAX_IN_FLIGHT", "")

	cfg := Load()
	if cfg.APIRateLimitRPS != 20 {
		t.Fatalf("expected default rate limit 20 rps, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIRateLimitBurst != 40 {
		t.Fatalf("expected default burst 40, got %d", cfg.APIRateLimitBurst)
	}
	if cfg.APIMaxInFlight != 64 {
		t.Fatalf("expected default in-flight cap 64, got %d", cfg.APIMaxInFlight)
	}
}
