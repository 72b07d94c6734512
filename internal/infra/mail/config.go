package mail

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type MailConfig struct {
	SMTPHost string `env:"MAIL_HOST"`
	SMTPPort string `env:"MAIL_PORT" envDefault:"587"`
	Username string `env:"MAIL_USERNAME"`
	Password string `env:"MAIL_PASSWORD"`
	From     string `env:"MAIL_FROM"`
}

func NewMailConfig() *MailConfig {
	var cfg MailConfig
	if err := env.Parse(&cfg); err != nil {
		slog.Error("err parsing mail config", "err", err)
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &cfg
}
