package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the API server settings. Database and logger settings are
// read by their own packages.
type Config struct {
	// ServerAddr is the listen address (host:port).
	ServerAddr string
	// SessionSecret is the shared secret session tokens are signed with.
	SessionSecret string
	SessionIssuer string
	SessionTTL    time.Duration
	// AllowedEmails gates who may be issued a session at all.
	AllowedEmails []string
	CORSOrigins   []string
	// PrincipalCacheTTL bounds how long a role change takes to apply.
	PrincipalCacheTTL  time.Duration
	PrincipalCacheSize int
}

var ErrMissingSecret = errors.New("SESSION_SECRET is required")

// ConfigFromEnv reads server config from the environment. Call
// godotenv.Load first if a .env file should be honored.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		ServerAddr:         getEnv("SERVER_ADDR", "0.0.0.0:8431"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		SessionIssuer:      getEnv("SESSION_ISSUER", "service-ledger-go"),
		SessionTTL:         getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		AllowedEmails:      allowedEmails(),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		PrincipalCacheTTL:  getEnvDuration("PRINCIPAL_CACHE_TTL", 30*time.Second),
		PrincipalCacheSize: getEnvInt("PRINCIPAL_CACHE_SIZE", 128),
	}
	if cfg.SessionSecret == "" {
		return cfg, ErrMissingSecret
	}
	return cfg, nil
}

// IsAllowedEmail reports whether email is on the allow-list (case-insensitive).
func (c Config) IsAllowedEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range c.AllowedEmails {
		if e == email {
			return true
		}
	}
	return false
}

// allowedEmails merges ALLOWED_EMAILS with the USER1_EMAIL/USER2_EMAIL pair
// used by older deployments.
func allowedEmails() []string {
	seen := map[string]bool{}
	var out []string
	add := func(v string) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}
	for _, e := range splitCSV(os.Getenv("ALLOWED_EMAILS")) {
		add(e)
	}
	add(os.Getenv("USER1_EMAIL"))
	add(os.Getenv("USER2_EMAIL"))
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return def
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
