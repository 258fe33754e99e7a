package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.Equal(t, "academic_records", cfg.Database.Name)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	require.True(t, cfg.Dashboard.Enabled)
	require.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	require.InDelta(t, 75.0, cfg.Grading.LowAttendanceWarnPct, 0.0001)
	require.InDelta(t, 3.7, cfg.Grading.DeansListMinimumGPA, 0.0001)
	require.InDelta(t, 2.0, cfg.Grading.ProbationMaximumGPA, 0.0001)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRATION", "30m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DASHBOARD_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	// bad duration falls back to the default
	require.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
}
