package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds runtime configuration for the word imposter backend.
type Config struct {
	HTTPPort       string
	AllowedOrigins []string
	PublicDir      string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	allowedOrigins := []string{"*"}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = splitAndTrim(origins)
	}

	publicDir := os.Getenv("PUBLIC_DIR")
	if publicDir == "" {
		publicDir = "public"
	}

	return Config{
		HTTPPort:       port,
		AllowedOrigins: allowedOrigins,
		PublicDir:      publicDir,
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

func splitAndTrim(input string) []string {
	raw := strings.Split(input, ",")
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
