// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Locale      string
	Country     string
	CookiesPath string
	DBPath      string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPTo   string

	ClaimDelayMin time.Duration
	ClaimDelayMax time.Duration
}

// HasSMTP returns true when enough SMTP settings are present to attempt
// delivery. Used by the composition root to decide between a real mailer
// and running with delivery disabled.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// SMTP settings (PROMOWATCH_SMTP_HOST, PROMOWATCH_SMTP_USER, PROMOWATCH_SMTP_PASS,
// PROMOWATCH_SMTP_TO) are optional; without them the pipeline still runs but skips
// delivery. Optional variables with defaults: PROMOWATCH_LOCALE (en-US),
// PROMOWATCH_COUNTRY (US), PROMOWATCH_COOKIES_PATH (cookies.json),
// PROMOWATCH_DB_PATH (promowatch.db), PROMOWATCH_SMTP_PORT (465),
// PROMOWATCH_CLAIM_DELAY_MIN (3s), PROMOWATCH_CLAIM_DELAY_MAX (6s).
func Load() (*Config, error) {
	cfg := &Config{
		Locale:        "en-US",
		Country:       "US",
		CookiesPath:   "cookies.json",
		DBPath:        "promowatch.db",
		SMTPPort:      465,
		ClaimDelayMin: 3 * time.Second,
		ClaimDelayMax: 6 * time.Second,
	}

	if v, ok := os.LookupEnv("PROMOWATCH_LOCALE"); ok && v != "" {
		cfg.Locale = v
	}
	if v, ok := os.LookupEnv("PROMOWATCH_COUNTRY"); ok && v != "" {
		cfg.Country = v
	}
	if v, ok := os.LookupEnv("PROMOWATCH_COOKIES_PATH"); ok && v != "" {
		cfg.CookiesPath = v
	}
	if v, ok := os.LookupEnv("PROMOWATCH_DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}

	cfg.SMTPHost = os.Getenv("PROMOWATCH_SMTP_HOST")
	cfg.SMTPUser = os.Getenv("PROMOWATCH_SMTP_USER")
	cfg.SMTPPass = os.Getenv("PROMOWATCH_SMTP_PASS")
	cfg.SMTPTo = os.Getenv("PROMOWATCH_SMTP_TO")
	if cfg.SMTPTo == "" {
		cfg.SMTPTo = cfg.SMTPUser
	}

	if v, ok := os.LookupEnv("PROMOWATCH_SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("PROMOWATCH_SMTP_PORT has invalid port %q", v)
		}
		cfg.SMTPPort = port
	}

	if v, ok := os.LookupEnv("PROMOWATCH_CLAIM_DELAY_MIN"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PROMOWATCH_CLAIM_DELAY_MIN has invalid duration %q: %w", v, err)
		}
		cfg.ClaimDelayMin = parsed
	}
	if v, ok := os.LookupEnv("PROMOWATCH_CLAIM_DELAY_MAX"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PROMOWATCH_CLAIM_DELAY_MAX has invalid duration %q: %w", v, err)
		}
		cfg.ClaimDelayMax = parsed
	}
	if cfg.ClaimDelayMax < cfg.ClaimDelayMin {
		return nil, fmt.Errorf("PROMOWATCH_CLAIM_DELAY_MAX (%s) is below PROMOWATCH_CLAIM_DELAY_MIN (%s)",
			cfg.ClaimDelayMax, cfg.ClaimDelayMin)
	}

	return cfg, nil
}
