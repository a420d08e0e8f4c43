package config

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "5175" || !c.HTTPEnabled || c.ScoresBackend != "memory" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	p := c.Policy()
	if p.TimedInviteTTL != 5*time.Minute || p.TurnInviteTTL != 15*time.Minute || p.TimedGameTTL != 10*time.Minute {
		t.Fatalf("policy = %+v", p)
	}
	if c.CleanupInterval != 30*time.Second || c.RateLimitBurst != 10 || c.RateLimitRPS != 5 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Level() != zerolog.InfoLevel {
		t.Fatalf("Level = %v", c.Level())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("TURN_INVITE_EXPIRY", "1h")
	t.Setenv("SCORES_BACKEND", "sqlite")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr() != ":8080" || c.TurnInviteExpiry != time.Hour || c.ScoresBackend != "sqlite" {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.Level() != zerolog.DebugLevel {
		t.Fatalf("Level = %v", c.Level())
	}
}

func TestLoadErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("CLEANUP_INTERVAL", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("bad duration: %v", err)
	}

	t.Setenv("CLEANUP_INTERVAL", "0s")
	t.Setenv("SCORES_BACKEND", "redis")
	_, err := Load()
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	for _, want := range []string{"CLEANUP_INTERVAL", "SCORES_BACKEND"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestNoHostEnabled(t *testing.T) {
	c := Config{ScoresBackend: "memory", TimedInviteExpiry: 1, TurnInviteExpiry: 1, TimedGameExpiry: 1, CleanupInterval: 1}
	if err := c.Validate(); err == nil {
		t.Fatal("config with no host accepted")
	}
	c.TelegramToken = "x"
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
