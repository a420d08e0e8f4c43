// internal/config/config.go
//
// Process configuration.
//
// Values come from the environment, optionally seeded from a .env file in
// the working directory (development). Every key has a default, so an empty
// environment yields a runnable server with the embedded dictionary,
// in-memory scores and the Telegram host disabled.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/robalobadob/worduel/internal/scores"
	"github.com/robalobadob/worduel/internal/session"
)

// Config is the full process configuration.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP host
	HTTPEnabled bool   `env:"HTTP_ENABLED" envDefault:"true"`
	Port        string `env:"PORT"         envDefault:"5175"`
	JWTSecret   string `env:"JWT_SECRET"   envDefault:"dev_secret_change_me"`

	// Telegram host; disabled when the token is empty.
	TelegramToken string `env:"TELEGRAM_TOKEN"`
	BotDebug      bool   `env:"BOT_DEBUG"`

	WordsFile     string `env:"WORDS_FILE"`
	ScoresBackend string `env:"SCORES_BACKEND" envDefault:"memory"`
	ScoresDSN     string `env:"SCORES_DSN"`

	TimedInviteExpiry time.Duration `env:"TIMED_INVITE_EXPIRY" envDefault:"5m"`
	TurnInviteExpiry  time.Duration `env:"TURN_INVITE_EXPIRY"  envDefault:"15m"`
	TimedGameExpiry   time.Duration `env:"TIMED_GAME_EXPIRY"   envDefault:"10m"`
	CleanupInterval   time.Duration `env:"CLEANUP_INTERVAL"    envDefault:"30s"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := ParseEnv(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.ScoresBackend {
	case scores.BackendMemory, scores.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("SCORES_BACKEND: unknown backend %q", c.ScoresBackend))
	}
	for name, d := range map[string]time.Duration{
		"TIMED_INVITE_EXPIRY": c.TimedInviteExpiry,
		"TURN_INVITE_EXPIRY":  c.TurnInviteExpiry,
		"TIMED_GAME_EXPIRY":   c.TimedGameExpiry,
		"CLEANUP_INTERVAL":    c.CleanupInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if !c.HTTPEnabled && c.TelegramToken == "" {
		errs = append(errs, errors.New("no host enabled: set HTTP_ENABLED or TELEGRAM_TOKEN"))
	}
	return errors.Join(errs...)
}

// Level parses LOG_LEVEL, defaulting to info.
func (c Config) Level() zerolog.Level {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}

// Policy returns the expiry timings for the session service.
func (c Config) Policy() session.Policy {
	return session.Policy{
		TimedInviteTTL: c.TimedInviteExpiry,
		TurnInviteTTL:  c.TurnInviteExpiry,
		TimedGameTTL:   c.TimedGameExpiry,
	}
}

// Addr is the HTTP listen address.
func (c Config) Addr() string { return ":" + c.Port }
