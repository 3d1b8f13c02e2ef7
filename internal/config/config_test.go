package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/ums-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvVars_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_FORMAT", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "console", c.GetLogFormat())
	require.Equal(t, "ums_session", c.GetSessionCookieName())
	require.Equal(t, config.StoreMemory, c.GetSessionStore())
}

func TestEnvVars_Overrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("ENV", "PROD")
	t.Setenv("API_BASE_URL", "https://api.example.edu/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("SESSION_TTL", "not-a-duration")

	c := config.New()
	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "json", c.GetLogFormat())
	require.Equal(t, "https://api.example.edu", c.GetAPIBaseURL())
	require.Equal(t, 3*time.Second, c.GetAPITimeout())
	require.Equal(t, 7*24*time.Hour, c.GetSessionTTL())
}
