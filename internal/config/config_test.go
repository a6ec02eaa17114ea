package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "3000", cfg.HTTPPort)
	require.Equal(t, ":3000", cfg.Address())
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.Equal(t, "public", cfg.PublicDir)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://example.com, https://play.example.com ,")
	t.Setenv("PUBLIC_DIR", "assets")

	cfg := Load()

	require.Equal(t, ":9090", cfg.Address())
	require.Equal(t, []string{"https://example.com", "https://play.example.com"}, cfg.AllowedOrigins)
	require.Equal(t, "assets", cfg.PublicDir)
}
