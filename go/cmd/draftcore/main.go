// Command draftcore runs the real-time draft-coordination service: the
// Coordinator Registry, Subscription Hub, Trade Engine, and outbox relay
// wired against Postgres and NATS JetStream (§4, §6).
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftcore/go/internal/draft"
	"github.com/mcdev12/draftcore/go/internal/draft/events"
	"github.com/mcdev12/draftcore/go/internal/draft/hub"
	"github.com/mcdev12/draftcore/go/internal/draft/outbox"
	"github.com/mcdev12/draftcore/go/internal/draft/store"
)

func main() {
	log.Info().Msg("starting draftcore")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file; proceeding with existing environment")
	}

	cfg, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	pool, err := setupDatabase(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up database")
	}
	defer pool.Close()

	gw := store.NewPostgresGateway(pool)
	clock := clockwork.NewRealClock()

	var publisher outbox.Publisher
	var jsPublisher *outbox.JetStreamPublisher
	if cfg.NATS.Enabled {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		jsCfg.StreamName = cfg.NATS.StreamName
		jsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
		jsPublisher, err = outbox.NewJetStreamPublisher(jsCfg, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS JetStream")
		}
		defer jsPublisher.Close()
		publisher = jsPublisher
	} else {
		log.Warn().Msg("NATS disabled; outbox events will accumulate unsent")
	}

	// The Registry needs a Broadcaster before the Hub exists and the Hub
	// needs the Registry before it can be constructed, so wire a forwarding
	// shim and swap in the real Hub once built (same pattern as the
	// teacher's Orchestrator/connection-manager construction order).
	bus := &broadcasterRef{}
	registry := draft.NewRegistry(gw, clock, bus, log.Logger)
	trades := draft.NewTradeEngine(gw, registry, clock)
	authorizer := hub.NewGatewayAuthorizer(gw)
	h := hub.NewHub(registry, trades, gw, authorizer, log.Logger)
	bus.set(h)

	go h.Start(ctx)

	if publisher != nil {
		worker := outbox.NewWorker(gw, publisher, outbox.Config{
			PollInterval: cfg.outboxPollInterval(),
			BatchSize:    cfg.Outbox.BatchSize,
			MaxRetries:   3,
		}, log.Logger)
		if err := worker.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start outbox worker")
		}
		defer func() {
			if err := worker.Stop(); err != nil {
				log.Error().Err(err).Msg("failed to stop outbox worker")
			}
		}()
	}

	server := setupServer(cfg.HTTP.Port, h)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server terminated unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server shutdown complete")
}

// broadcasterRef lets the Registry be constructed before the Hub exists;
// Coordinators only call Broadcast long after both are wired.
type broadcasterRef struct {
	target draft.Broadcaster
}

func (b *broadcasterRef) set(target draft.Broadcaster) { b.target = target }

func (b *broadcasterRef) Broadcast(leagueID uuid.UUID, env events.Envelope) {
	if b.target != nil {
		b.target.Broadcast(leagueID, env)
	}
}
