package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/bot"
	"github.com/robalobadob/worduel/internal/config"
	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/httpserver"
	"github.com/robalobadob/worduel/internal/limit"
	"github.com/robalobadob/worduel/internal/scores"
	"github.com/robalobadob/worduel/internal/session"
	"github.com/robalobadob/worduel/internal/words"
)

const tokenTTL = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	// worduel token <user id> prints a bearer token for the HTTP API.
	if len(os.Args) == 3 && os.Args[1] == "token" {
		if err := printToken(cfg.JWTSecret, os.Args[2]); err != nil {
			log.Fatal().Err(err).Msg("failed to sign token")
		}
		return
	}

	dict, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	log.Info().Int("words", dict.Len()).Ints("lengths", dict.Lengths()).Msg("dictionary loaded")

	board, err := scores.Open(cfg.ScoresBackend, cfg.ScoresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open scores")
	}
	defer func() {
		if err := board.Close(); err != nil {
			log.Warn().Err(err).Msg("close scores")
		}
	}()

	svc := session.New(dict, session.WithPolicy(cfg.Policy()), session.WithScores(board))
	limits := limit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweep(ctx, svc, limits, cfg.CleanupInterval)
	}()

	if cfg.HTTPEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveHTTP(ctx, cfg.Addr(), httpserver.New(svc, limits, cfg.JWTSecret).Handler())
		}()
	}

	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken, cfg.BotDebug, bot.NewCommands(svc, limits))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create telegram bot")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Run(ctx); err != nil {
				log.Error().Err(err).Msg("telegram bot stopped")
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	wg.Wait()
	log.Info().Int("games", svc.ActiveGames()).Msg("shutdown complete")
}

// sweep purges expired invites, stale timed duels and idle rate limiters.
func sweep(ctx context.Context, svc *session.Service, limits *limit.Registry, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			rep := svc.Sweep(now)
			idle := limits.Cleanup(10 * every)
			if rep.Invites > 0 || rep.Games > 0 || idle > 0 {
				log.Info().
					Int("invites", rep.Invites).
					Int("games", rep.Games).
					Int("limiters", idle).
					Msg("sweep")
			}
		}
	}
}

func serveHTTP(ctx context.Context, addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", addr).Msg("starting http server")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server exited")
	}
}

func printToken(secret, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("bad user id %q", raw)
	}
	tok, exp, err := httpserver.SignToken(secret, game.UserID(id), tokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.Format(time.RFC3339))
	return nil
}
