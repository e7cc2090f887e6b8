package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	LogLevel string

	PostgresDSN string

	NATSURL     string
	NATSSubject string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	LLMTimeout    time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string

	ResendAPIKey string
	MailFrom     string

	AWSRegion string
	S3Bucket  string

	ProbeTimeout    time.Duration
	ReachabilityURL string

	APIRateLimitRPS     float64
	APIRateLimitBurst   int
	APIMaxInFlight      int
	APIBackpressureWait time.Duration

	WorkerMetricsPort string
}

// Setting is one logical configuration value with an ordered list of accepted
// environment keys. The first non-empty candidate wins.
type Setting struct {
	Name string
	Keys []string
}

// RequiredSettings is the fixed manifest validated by the readiness check.
var RequiredSettings = []Setting{
	{Name: "postgres_dsn", Keys: []string{"POSTGRES_DSN"}},
	{Name: "openai_api_key", Keys: []string{"OPENAI_API_KEY"}},
	{Name: "stripe_secret_key", Keys: []string{"STRIPE_SECRET_KEY", "STRIPE_API_KEY"}},
	{Name: "stripe_webhook_secret", Keys: []string{"STRIPE_WEBHOOK_SECRET"}},
	{Name: "resend_api_key", Keys: []string{"RESEND_API_KEY"}},
	{Name: "s3_bucket", Keys: []string{"S3_BUCKET"}},
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "letters.paid"),

		OpenAIBaseURL: mustEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:  mustEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   mustEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:    mustEnvDuration("LLM_TIMEOUT", 90*time.Second),

		StripeSecretKey:     resolveAlias("STRIPE_SECRET_KEY", "STRIPE_API_KEY"),
		StripeWebhookSecret: mustEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceID:       mustEnv("STRIPE_PRICE_ID", ""),

		ResendAPIKey: mustEnv("RESEND_API_KEY", ""),
		MailFrom:     mustEnv("MAIL_FROM", "appeals@denial-appeals.dev"),

		AWSRegion: mustEnv("AWS_REGION", "us-east-1"),
		S3Bucket:  mustEnv("S3_BUCKET", ""),

		ProbeTimeout:    mustEnvDuration("PROBE_TIMEOUT", 5*time.Second),
		ReachabilityURL: mustEnv("REACHABILITY_URL", "https://www.google.com/generate_204"),

		APIRateLimitRPS:     mustEnvFloat("API_RATE_LIMIT_RPS", 20),
		APIRateLimitBurst:   mustEnvInt("API_RATE_LIMIT_BURST", 40),
		APIMaxInFlight:      mustEnvInt("API_MAX_IN_FLIGHT", 64),
		APIBackpressureWait: mustEnvDuration("API_BACKPRESSURE_WAIT", 200*time.Millisecond),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

// MissingRequired reports the logical names from RequiredSettings whose
// resolved value is empty in cfg.
func (c Config) MissingRequired() []string {
	resolved := map[string]string{
		"postgres_dsn":          c.PostgresDSN,
		"openai_api_key":        c.OpenAIAPIKey,
		"stripe_secret_key":     c.StripeSecretKey,
		"stripe_webhook_secret": c.StripeWebhookSecret,
		"resend_api_key":        c.ResendAPIKey,
		"s3_bucket":             c.S3Bucket,
	}

	var missing []string
	for _, setting := range RequiredSettings {
		if resolved[setting.Name] == "" {
			missing = append(missing, setting.Name)
		}
	}
	return missing
}

func resolveAlias(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
