package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/session"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// KVConfig holds configuration for the JetStream KeyValue snapshot store.
type KVConfig struct {
	Bucket      string
	Description string
	TTL         time.Duration
}

// DefaultKVConfig returns the stock snapshot bucket layout. Snapshots
// expire a week after the last write; completed auctions live on in the
// league record, not here.
func DefaultKVConfig() KVConfig {
	return KVConfig{
		Bucket:      "auction-state",
		Description: "Calcutta auction session snapshots",
		TTL:         7 * 24 * time.Hour,
	}
}

// KVStore persists snapshots in a JetStream KeyValue bucket, giving
// every auctiond instance the same durable view.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore creates or binds the snapshot bucket.
func NewKVStore(ctx context.Context, js jetstream.JetStream, cfg KVConfig) (*KVStore, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: cfg.Description,
		TTL:         cfg.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("create snapshot bucket: %w", err)
	}
	log.Info().Str("bucket", cfg.Bucket).Msg("bound auction snapshot bucket")
	return &KVStore{kv: kv}, nil
}

// Load returns the snapshot for a league, or ErrNotFound.
func (s *KVStore) Load(ctx context.Context, leagueID uuid.UUID) (*session.Snapshot, error) {
	entry, err := s.kv.Get(ctx, Key(leagueID))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(entry.Value(), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save serializes and writes the snapshot for a league.
func (s *KVStore) Save(ctx context.Context, leagueID uuid.UUID, snap *session.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := s.kv.Put(ctx, Key(leagueID), blob); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
