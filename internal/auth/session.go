package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps one redis record per live login so logout can revoke
// an access token before it expires. The record TTL matches the token TTL.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }

func (s *SessionStore) Create(ctx context.Context, userID int64, staff bool) (string, error) {
	id := uuid.NewString()
	err := s.rdb.HSet(ctx, sessionKey(id),
		"userId", userID,
		"staff", fmt.Sprintf("%t", staff),
	).Err()
	if err != nil {
		return "", err
	}
	s.rdb.Expire(ctx, sessionKey(id), s.ttl)
	return id, nil
}

func (s *SessionStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}
