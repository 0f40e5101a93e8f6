package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// App
	Env string // dev / staging / prod
	// HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	CORSOrigins      []string

	// Auth / Security
	JWTSecret string
	JWTIssuer string

	// Token TTLs are fixed per purpose but overridable by env for staging.
	AccessTokenTTL        time.Duration
	VerifyEmailTokenTTL   time.Duration
	PasswordResetTokenTTL time.Duration
	OAuthStateTTL         time.Duration

	// Links embedded in notification emails. Must contain `token=` because
	// the flows append the token.
	VerifyEmailBaseURL   string
	PasswordResetBaseURL string

	// Google OAuth (calendar.readonly delegation)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Infrastructure
	DBAddr         string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitURL      string
	RabbitExchange string
}

func Load() (*Config, error) {
	// .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "vointer")

	// Fixed purpose TTLs, env-overridable.
	att, err := getDuration("ACCESS_TOKEN_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = att

	vet, err := getDuration("VERIFY_EMAIL_TOKEN_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.VerifyEmailTokenTTL = vet

	prt, err := getDuration("PASSWORD_RESET_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.PasswordResetTokenTTL = prt

	ost, err := getDuration("OAUTH_STATE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.OAuthStateTTL = ost

	// Email link bases; the flows append the token value.
	cfg.VerifyEmailBaseURL = os.Getenv("VERIFY_EMAIL_BASE_URL")
	if cfg.VerifyEmailBaseURL == "" {
		return nil, fmt.Errorf("missing required env var: VERIFY_EMAIL_BASE_URL")
	}
	if !strings.Contains(cfg.VerifyEmailBaseURL, "token=") {
		return nil, fmt.Errorf("VERIFY_EMAIL_BASE_URL must contain `token=`")
	}

	cfg.PasswordResetBaseURL = os.Getenv("PASSWORD_RESET_BASE_URL")
	if cfg.PasswordResetBaseURL == "" {
		return nil, fmt.Errorf("missing required env var: PASSWORD_RESET_BASE_URL")
	}
	if !strings.Contains(cfg.PasswordResetBaseURL, "token=") {
		return nil, fmt.Errorf("PASSWORD_RESET_BASE_URL must contain `token=`")
	}

	// Google delegation is optional in dev; the delegate reports itself
	// unconfigured and the calendar routes fail with a clear error.
	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = os.Getenv("GOOGLE_REDIRECT_URL")

	// Infrastructure dependencies.
	// The service cannot operate without its database; fail fast.
	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}

	// Redis and Rabbit degrade to in-memory fallbacks in dev.
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %q: %w", v, err)
		}
		cfg.RedisDB = n
	}
	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "vointer.events")

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	rt, err := getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPReadTimeout = rt

	wt, err := getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout = wt

	it, err := getDuration("HTTP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout = it

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}
