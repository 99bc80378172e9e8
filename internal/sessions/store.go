package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/intake"
)

const keyPrefix = "intake:session:"

// Store keeps form snapshots in Redis. A snapshot that expires is an abandoned
// session; nothing is written to the contact repository for it.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewStore(client redis.Cmdable, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// Save writes the snapshot and restarts its TTL.
func (s *Store) Save(ctx context.Context, snap intake.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return apperrors.NewSessionStoreFailedError(fmt.Errorf("encode snapshot: %w", err))
	}
	if err := s.client.Set(ctx, sessionKey(snap.SessionID), data, s.ttl).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (intake.Snapshot, error) {
	var snap intake.Snapshot
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return snap, apperrors.NewSessionNotFoundError(id)
	}
	if err != nil {
		return snap, apperrors.NewSessionStoreFailedError(err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, apperrors.NewSessionStoreFailedError(fmt.Errorf("decode snapshot: %w", err))
	}
	return snap, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}
