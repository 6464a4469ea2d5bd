package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/adapters/bus"
	router "github.com/vkotov/roulette/internal/adapters/http"
	"github.com/vkotov/roulette/internal/app"
	"github.com/vkotov/roulette/internal/app/orch"
	"github.com/vkotov/roulette/internal/config"
	"github.com/vkotov/roulette/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var events core.EventBus = bus.NoopBus{}
	if cfg.AMQPURL != "" {
		amqpBus, err := bus.NewAMQPBus(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Error().Err(err).Msg("broadcast bus unavailable, running single-instance")
		} else {
			events = amqpBus
			defer amqpBus.Close()
		}
	}

	reg := app.NewRegistry()
	rooms := app.NewRoomManager()

	o := &orch.Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Policy:   app.SimplePolicy{},
		Bus:      events,
	}
	o.Matcher = app.NewMatcher(o)
	o.Relay = app.NewRelay(o.Matcher, reg)

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Roulette server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
