// README: Session store backed by Redis with TTL expiry.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"courier/internal/types"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps estimation sessions in Redis. Sessions expire on their
// own after the configured TTL; every save renews the clock, so an active
// sender never loses their form state mid-edit.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, session *Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("delivery: marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+string(session.ID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("delivery: save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id types.ID) (*Session, error) {
	b, err := s.rdb.Get(ctx, sessionKeyPrefix+string(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delivery: get session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(b, &session); err != nil {
		return nil, fmt.Errorf("delivery: unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id types.ID) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+string(id)).Err(); err != nil {
		return fmt.Errorf("delivery: delete session: %w", err)
	}
	return nil
}
