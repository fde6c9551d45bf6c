package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bracketbid/calcutta/go/internal/auction/store"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// Service is the auction gateway: the read-push surface (WebSocket plus
// state bootstrap) and the intent surface (bid and commissioner
// operations) in front of the orchestrator.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
	stateHandler      *StateHandler
	intentHandler     *IntentHandler
}

// Config holds configuration for the gateway service.
type Config struct {
	ConnectionConfig ConnectionConfig
	ConsumerConfig   ConsumerConfig
}

// DefaultConfig returns the stock gateway configuration.
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		ConsumerConfig:   DefaultConsumerConfig(),
	}
}

// NewService wires the gateway over a JetStream context, the owner
// registry and the snapshot store.
func NewService(ctx context.Context, config Config, js jetstream.JetStream, owners OwnerRegistry, snapshots store.SnapshotStore) (*Service, error) {
	connectionManager := NewConnectionManager(config.ConnectionConfig)

	eventConsumer, err := NewEventConsumer(ctx, connectionManager, js, config.ConsumerConfig)
	if err != nil {
		return nil, fmt.Errorf("create event consumer: %w", err)
	}

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
		eventConsumer:     eventConsumer,
		stateHandler:      NewStateHandler(owners, snapshots),
		intentHandler:     NewIntentHandler(owners),
	}, nil
}

// Start runs the connection manager and event consumer until ctx is
// cancelled.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting auction gateway service")

	go s.connectionManager.Start(ctx)

	go func() {
		if err := s.eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("auction gateway service stopped")
	return nil
}

// RegisterRoutes registers the gateway's HTTP routes.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/auction", s.wsHandler.HandleAuctionConnection)
	mux.HandleFunc("GET /ws/stats", s.wsHandler.HandleConnectionStats)

	mux.HandleFunc("GET /api/leagues/{id}/auction/state", s.stateHandler.HandleGetState)
	mux.HandleFunc("POST /api/leagues/{id}/auction/bids", s.intentHandler.HandleBid)
	mux.HandleFunc("POST /api/leagues/{id}/auction/pause", s.intentHandler.HandlePause)
	mux.HandleFunc("POST /api/leagues/{id}/auction/resume", s.intentHandler.HandleResume)
	mux.HandleFunc("POST /api/leagues/{id}/auction/skip", s.intentHandler.HandleSkip)

	log.Info().Msg("auction gateway routes registered")
}

// GetStats returns connection statistics.
func (s *Service) GetStats() Stats {
	return s.connectionManager.GetStats()
}
