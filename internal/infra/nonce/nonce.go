package nonce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	RedisURL string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	TTL      time.Duration `env:"NONCE_TTL" envDefault:"1h"`
	Prefix   string        `env:"NONCE_PREFIX" envDefault:"sitemod:nonce:"`
}

func NewConfig() *Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("err parsing nonce config", "err", err)
	}
	return &cfg
}

// Store issues single-use tokens bound to an action and a user.
type Store struct {
	client *redis.Client
	cfg    *Config
}

func New(cfg *Config) (*Store, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("err parsing redis url, %v", err)
	}
	return &Store{client: redis.NewClient(opt), cfg: cfg}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Issue returns the live token for action and userID, or stores a new one.
// A user holds at most one token per action.
func (s *Store) Issue(ctx context.Context, action string, userID uuid.UUID) (string, error) {
	issued := s.issuedKey(action, userID)
	token, err := s.client.Get(ctx, issued).Result()
	switch {
	case err == nil:
		live, err := s.client.Expire(ctx, s.cfg.Prefix+token, s.cfg.TTL).Result()
		if err != nil {
			return "", fmt.Errorf("err refreshing nonce, %v", err)
		}
		if live {
			if err = s.client.Expire(ctx, issued, s.cfg.TTL).Err(); err != nil {
				return "", fmt.Errorf("err refreshing nonce, %v", err)
			}
			return token, nil
		}
	case !errors.Is(err, redis.Nil):
		return "", fmt.Errorf("err reading nonce, %v", err)
	}

	token = uuid.NewString()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.cfg.Prefix+token, binding(action, userID), s.cfg.TTL)
		pipe.Set(ctx, issued, token, s.cfg.TTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("err storing nonce, %v", err)
	}
	return token, nil
}

// Consume reports whether token was issued for action and userID. The token
// is spent by the first call whatever the outcome.
func (s *Store) Consume(ctx context.Context, token, action string, userID uuid.UUID) (bool, error) {
	if token == "" {
		return false, nil
	}
	value, err := s.client.GetDel(ctx, s.cfg.Prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("err reading nonce, %v", err)
	}
	if value != binding(action, userID) {
		return false, nil
	}
	if err = s.client.Del(ctx, s.issuedKey(action, userID)).Err(); err != nil {
		slog.Warn("err clearing issued nonce", "action", action, "err", err)
	}
	return true, nil
}

func (s *Store) issuedKey(action string, userID uuid.UUID) string {
	return s.cfg.Prefix + "issued:" + binding(action, userID)
}

func binding(action string, userID uuid.UUID) string {
	return action + ":" + userID.String()
}
