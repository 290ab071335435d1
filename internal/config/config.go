package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":5000"`
	Port            string        `env:"PORT"`
	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	AudioDir        string        `env:"AUDIO_DIR" envDefault:"static/audio"`
	OutboxSize      int           `env:"OUTBOX_SIZE" envDefault:"32"`
	WSPingInterval  time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`
	WSWriteTimeout  time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"3s"`
	SSEPingInterval time.Duration `env:"SSE_PING_INTERVAL" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads an optional .env file and then the environment. Variables
// already set win over the file.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Port != "" {
		cfg.HTTPAddr = ":" + cfg.Port
	}
	if cfg.OutboxSize < 1 {
		return nil, fmt.Errorf("OUTBOX_SIZE must be positive, got %d", cfg.OutboxSize)
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}
