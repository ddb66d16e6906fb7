package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mw:vsess:"

// RedisStore is the production store for multi-instance deployments: the TTL
// lives in Redis itself and Consume maps onto an atomic GETDEL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, documentPath, epicNumber string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	sess := Session{
		Token:        token,
		DocumentPath: documentPath,
		EPIC:         epicNumber,
		ExpiresAt:    time.Now().UTC().Add(ttl),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, keyPrefix+token, b, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	b, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	return decode(b, err)
}

func (s *RedisStore) Consume(ctx context.Context, token string) (Session, error) {
	b, err := s.client.GetDel(ctx, keyPrefix+token).Bytes()
	return decode(b, err)
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}

func decode(b []byte, err error) (Session, error) {
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return Session{}, err
	}
	// Redis expires the key itself; re-check the timestamp for clock skew.
	if time.Now().UTC().After(sess.ExpiresAt) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}
