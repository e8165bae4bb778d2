package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/state"
)

// SnapshotStore persists notification state in Redis, one JSON value
// per scope. Writing the whole snapshot as a single SET keeps Save
// all-or-nothing: a pass that dies mid-write leaves the previous
// snapshot intact rather than a torn one.
type SnapshotStore struct {
	client *Client
	logger *zap.Logger
}

// NewSnapshotStore creates a snapshot store on top of the client.
func NewSnapshotStore(client *Client, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{client: client, logger: logger}
}

func (s *SnapshotStore) key(scope string) string {
	return fmt.Sprintf("diffstate:%s", scope)
}

// Load returns the persisted snapshot for the scope, or an empty one
// when nothing has been saved yet.
func (s *SnapshotStore) Load(ctx context.Context, scope string) (state.Snapshot, error) {
	val, err := s.client.rdb.Get(ctx, s.key(scope)).Result()
	if err == redis.Nil {
		return state.New(), nil
	}
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("redis get failed: %w", err)
	}

	var snap state.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		s.logger.Error("failed to unmarshal snapshot", zap.Error(err), zap.String("scope", scope))
		return state.Snapshot{}, fmt.Errorf("invalid persisted snapshot: %w", err)
	}
	snap.Normalize()

	s.logger.Debug("snapshot loaded",
		zap.String("scope", scope),
		zap.Int("tracked_statuses", len(snap.LastKnownStatus)),
		zap.Int("seen_pending", len(snap.SeenPendingIDs)),
	)

	return snap, nil
}

// Save replaces the persisted snapshot for the scope. Snapshots carry
// no TTL: seen-sets survive for the lifetime of the installation.
func (s *SnapshotStore) Save(ctx context.Context, scope string, snap state.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.rdb.Set(ctx, s.key(scope), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}
