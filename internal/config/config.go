package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	ModeServe = "serve"
	ModeTUI   = "tui"
)

type AppConfig struct {
	Mode string
	Addr string

	SquareSize int
	PawnPushes bool

	SaveDir     string
	SaveTTL     time.Duration
	RedisURL    string
	DatabaseURL string

	MessagesDir string

	LogLevel     string
	LogFormat    string
	LogToConsole bool
	LogToFile    bool
	LogFile      string
	LogCaller    bool
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Mode:         ModeServe,
		Addr:         ":8080",
		SquareSize:   72,
		SaveDir:      "saves",
		SaveTTL:      7 * 24 * time.Hour,
		LogLevel:     "info",
		LogFormat:    "legacy",
		LogToConsole: true,
		LogToFile:    true,
		LogFile:      filepath.Join("logs", "hotseat.log"),
	}

	if v := strings.TrimSpace(os.Getenv("HOTSEAT_MODE")); v != "" {
		cfg.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("HOTSEAT_ADDR")); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("HOTSEAT_SQUARE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 16 || n > 256 {
			return nil, fmt.Errorf("HOTSEAT_SQUARE_SIZE must be an integer in [16,256], got %q", v)
		}
		cfg.SquareSize = n
	}
	if v := strings.TrimSpace(os.Getenv("HOTSEAT_PAWN_PUSHES")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("HOTSEAT_PAWN_PUSHES must be a boolean, got %q", v)
		}
		cfg.PawnPushes = b
	}

	if v := strings.TrimSpace(os.Getenv("HOTSEAT_SAVE_DIR")); v != "" {
		cfg.SaveDir = v
	}
	if v := strings.TrimSpace(os.Getenv("HOTSEAT_SAVE_TTL")); v != "" { // seconds
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("HOTSEAT_SAVE_TTL must be a positive number of seconds, got %q", v)
		}
		cfg.SaveTTL = time.Duration(n) * time.Second
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("HOTSEAT_MESSAGES_DIR"))

	// Logging
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	cfg.LogToConsole = boolEnv("LOG_TO_CONSOLE", cfg.LogToConsole)
	cfg.LogToFile = boolEnv("LOG_TO_FILE", cfg.LogToFile)
	cfg.LogCaller = boolEnv("LOG_CALLER", cfg.LogCaller)
	if v := strings.TrimSpace(os.Getenv("LOG_FILE")); v != "" {
		cfg.LogFile = v
	}

	if cfg.Mode != ModeServe && cfg.Mode != ModeTUI {
		return nil, fmt.Errorf("HOTSEAT_MODE must be %q or %q, got %q", ModeServe, ModeTUI, cfg.Mode)
	}
	if cfg.Mode == ModeServe && cfg.Addr == "" {
		return nil, errors.New("HOTSEAT_ADDR is required in serve mode")
	}

	return cfg, nil
}

func boolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
