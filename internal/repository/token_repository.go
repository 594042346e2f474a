package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore is the registry of issued session tokens, backed by
// Redis. Each issued JWT is recorded under its JTI with a TTL matching
// the token expiry; a set per user tracks every JTI the user holds.
// Logout removes one JTI, logout-all and account deletion remove the
// whole set. The auth middleware rejects any token whose JTI is no
// longer registered.
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(redisURL string) (*TokenStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &TokenStore{client: client}, nil
}

// NewTokenStoreWithClient wraps an existing Redis client. Used by the
// server wiring (shared client with the rate limiter) and by tests.
func NewTokenStoreWithClient(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func tokenKey(jti string) string {
	return fmt.Sprintf("token:%s", jti)
}

func userTokensKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_tokens:%s", userID)
}

// Save registers a freshly issued token.
func (s *TokenStore) Save(ctx context.Context, userID uuid.UUID, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(jti), userID.String(), ttl).Err(); err != nil {
		return err
	}
	return s.client.SAdd(ctx, userTokensKey(userID), jti).Err()
}

// IsActive reports whether the token is still registered.
func (s *TokenStore) IsActive(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke removes a single token.
func (s *TokenStore) Revoke(ctx context.Context, userID uuid.UUID, jti string) error {
	if err := s.client.Del(ctx, tokenKey(jti)).Err(); err != nil {
		return err
	}
	return s.client.SRem(ctx, userTokensKey(userID), jti).Err()
}

// RevokeAll removes every token issued to the user. Called by
// logout-all and when the account is deleted.
func (s *TokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	jtis, err := s.client.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, tokenKey(jti))
	}
	keys = append(keys, userTokensKey(userID))

	return s.client.Del(ctx, keys...).Err()
}

func (s *TokenStore) Close() error {
	return s.client.Close()
}
