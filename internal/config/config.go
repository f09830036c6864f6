package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL string

	// World extents. Valid coordinates are [0, WorldSizeX) x [0, WorldSizeY).
	WorldSizeX int
	WorldSizeY int

	// Character starting block.
	StartingHealth  int
	StartingStamina int
	MaxAP           int
	StartingMoney   int
	StartX          int
	StartY          int

	// AP regeneration.
	APRegenRate     int
	APRegenInterval time.Duration

	MovementAPCost int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		WorldSizeX: getEnvInt("WORLD_SIZE_X", 12),
		WorldSizeY: getEnvInt("WORLD_SIZE_Y", 12),

		StartingHealth:  100,
		StartingStamina: 100,
		MaxAP:           10,
		StartingMoney:   500,
		StartX:          6,
		StartY:          6,

		APRegenRate:     getEnvInt("AP_REGEN_RATE", 1),
		APRegenInterval: time.Duration(getEnvInt("AP_REGEN_INTERVAL_MINUTES", 15)) * time.Minute,

		MovementAPCost: 1,
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
