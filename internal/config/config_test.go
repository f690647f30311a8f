package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	_, err := ConfigFromEnv()
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ALLOWED_EMAILS", "Alice@Example.com, bob@example.com")
	t.Setenv("USER1_EMAIL", "alice@example.com")
	t.Setenv("USER2_EMAIL", "carol@example.com")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PRINCIPAL_CACHE_TTL", "bogus")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com", "carol@example.com"}, cfg.AllowedEmails)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.PrincipalCacheTTL)
}

func TestIsAllowedEmail(t *testing.T) {
	cfg := Config{AllowedEmails: []string{"alice@example.com"}}
	assert.True(t, cfg.IsAllowedEmail(" ALICE@example.com "))
	assert.False(t, cfg.IsAllowedEmail("mallory@example.com"))
	assert.False(t, cfg.IsAllowedEmail(""))
}
