package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "r")
	t.Setenv("PORT", "")
	t.Setenv("PUBLIC_URL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Addr)
	assert.Equal(t, "http://localhost:3000", cfg.PublicURL)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Len(t, cfg.AllowedOrigins, 4)
	assert.Equal(t, "http://localhost:3000/f/abc", cfg.SurveyLink("abc"))
}

func TestParse_Flags(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	cfg, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), []string{
		"-port", "8080",
		"-access-secret", "a",
		"-refresh-secret", "r",
		"-public-url", "https://survey.example.org/",
		"-allowed-origins", "https://a.example.org, https://b.example.org",
	})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "https://survey.example.org/f/x", cfg.SurveyLink("x"))
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.AllowedOrigins)
}

func TestParse_MissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	assert.EqualError(t, err, "missing parameter -access-secret")

	_, err = Parse(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-access-secret", "a"})
	assert.EqualError(t, err, "missing parameter -refresh-secret")
}
