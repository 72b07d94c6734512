package auth

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type SessionConfig struct {
	Secret   string        `env:"SESSION_SECRET"`
	Lifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"12h"`
	Issuer   string        `env:"SESSION_ISSUER" envDefault:"site-moderation"`
}

func NewSessionConfig() *SessionConfig {
	var cfg SessionConfig
	if err := env.Parse(&cfg); err != nil {
		slog.Error("err parsing session config", "err", err)
	}
	if cfg.Lifetime == 0 {
		cfg.Lifetime = 12 * time.Hour
	}
	return &cfg
}
