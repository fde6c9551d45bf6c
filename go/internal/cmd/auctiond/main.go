// auctiond runs calcutta auctions: the supervisor that owns every due
// league's auction clock, and the gateway that pushes auction events to
// viewers and accepts bid intents.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/events"
	"github.com/bracketbid/calcutta/go/internal/auction/gateway"
	"github.com/bracketbid/calcutta/go/internal/auction/orchestrator"
	"github.com/bracketbid/calcutta/go/internal/auction/store"
	"github.com/bracketbid/calcutta/go/internal/dbconfig"
	"github.com/bracketbid/calcutta/go/internal/leagues"
	"github.com/bracketbid/calcutta/go/internal/tournaments"
	"github.com/bracketbid/calcutta/go/internal/users"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	cfg, err := loadConfig(getEnv("AUCTIOND_CONFIG", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	natsURL := getEnv("NATS_URL", nats.DefaultURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres
	pool, err := dbconfig.NewConfigFromEnv().Connect(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	leagueRepo := leagues.NewRepository(pool)
	tournamentRepo := tournaments.NewRepository(pool)
	userRepo := users.NewRepository(pool)

	// Event stream (publisher side owns its own connection)
	publisherCfg := events.DefaultJetStreamConfig()
	publisherCfg.URL = natsURL
	publisherCfg.StreamName = cfg.Events.StreamName
	publisherCfg.SubjectPrefix = cfg.Events.SubjectPrefix
	publisherCfg.MaxAge = time.Duration(cfg.Events.MaxAgeHours) * time.Hour
	publisherCfg.DuplicateWindow = time.Duration(cfg.Events.DuplicateWindow) * time.Minute

	publisher, err := events.NewJetStreamPublisher(publisherCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	defer publisher.Close()

	// Consumer-side JetStream context for the gateway and the snapshot
	// bucket.
	nc, err := nats.Connect(natsURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to NATS")
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create JetStream context")
	}

	kvCfg := store.DefaultKVConfig()
	kvCfg.Bucket = cfg.Snapshots.Bucket
	kvCfg.TTL = time.Duration(cfg.Snapshots.TTLDays) * 24 * time.Hour

	snapshots, err := store.NewKVStore(ctx, js, kvCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bind snapshot bucket")
	}

	// Supervisor: one owner per due league.
	supervisor := orchestrator.NewSupervisor(
		leagueRepo, tournamentRepo, userRepo,
		snapshots, publisher, leagueRepo,
		clockwork.NewRealClock(), cfg.pollInterval(),
	)

	// Gateway: WebSocket push plus the state and intent REST surface.
	gatewayCfg := gateway.DefaultConfig()
	gatewayCfg.ConsumerConfig.StreamName = cfg.Events.StreamName
	gatewayCfg.ConsumerConfig.SubjectFilter = cfg.Events.SubjectPrefix + ".>"

	gatewayService, err := gateway.NewService(ctx, gatewayCfg, js, supervisor, snapshots)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway service")
	}

	server := setupServer(gatewayService)

	go func() {
		if err := supervisor.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("supervisor failed")
		}
	}()
	go func() {
		if err := gatewayService.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway service failed")
		}
	}()
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Stop owners; each persists a final snapshot on the way out.
	cancel()
	time.Sleep(1 * time.Second)

	log.Info().Msg("auctiond shutdown complete")
}
