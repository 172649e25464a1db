package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/config"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	store, err := setupStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup storage")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := setupServices(ctx, cfg, store, clockwork.NewRealClock())
	if err != nil {
		store.Close()
		log.Fatal().Err(err).Msg("failed to setup services")
	}
	defer services.Close()

	if err := services.start(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("failed to apply default round length")
	}

	log.Info().
		Str("platform", cfg.PlatformOS).
		Str("policy", string(cfg.ExpiryPolicy)).
		Bool("surface", services.Surface.Supported()).
		Msg("blind timer ready")

	con := newConsole(services, os.Stdout)
	events := services.Engine.Subscribe(64)
	lines := readLines(os.Stdin)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return con.run(gctx, lines)
	})
	g.Go(func() error {
		return con.printEvents(gctx, events)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("console stopped with error")
	}
	log.Info().Msg("shutting down")
}

// readLines feeds r line by line until EOF.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			log.Error().Err(err).Msg("failed to read input")
		}
	}()
	return lines
}
