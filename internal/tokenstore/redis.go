package tokenstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one opaque token per user in Redis. Issue returns the
// user's live token when there is one.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil for RedisStore")
	}
	if keyPrefix == "" {
		keyPrefix = "cookbook:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore) tokenKey(token string) string {
	return s.keyPrefix + "token:" + token
}

func (s *RedisStore) userKey(userID uint) string {
	return fmt.Sprintf("%suser:%d:token", s.keyPrefix, userID)
}

func (s *RedisStore) Issue(ctx context.Context, userID uint) (string, error) {
	existing, err := s.client.Get(ctx, s.userKey(userID)).Result()
	if err == nil && existing != "" {
		return existing, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("lookup token of user %d: %w", userID, err)
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.tokenKey(token), userID, s.ttl)
	pipe.Set(ctx, s.userKey(userID), token, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store token of user %d: %w", userID, err)
	}
	return token, nil
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (uint, error) {
	raw, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	userID, err := s.Resolve(ctx, token)
	if errors.Is(err, ErrInvalidToken) {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.tokenKey(token))
	pipe.Del(ctx, s.userKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
