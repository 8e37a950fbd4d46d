package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath        string
	ServerPort    string
	LogLevel      string
	AdminPasscode string
	PublicURL     string
	RosterSeed    []string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:        getEnv("DB_PATH", "munchkin.db"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AdminPasscode: getEnv("ADMIN_PASSCODE", "1234"),
		PublicURL:     getEnv("PUBLIC_URL", "http://localhost:8080"),
		RosterSeed:    splitList(getEnv("ROSTER_SEED", "")),
	}

	if cfg.AdminPasscode == "" {
		return nil, fmt.Errorf("ADMIN_PASSCODE must not be empty")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("public_url", cfg.PublicURL).
		Int("roster_seed", len(cfg.RosterSeed)).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

var Module = fx.Provide(Load)
