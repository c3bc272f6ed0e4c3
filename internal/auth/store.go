package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskdeck/taskdeck/internal/shared"
)

const tokenKeyPrefix = "taskdeck:token:"

// TokenStore keeps bearer tokens and their claims in Redis with a TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue stores the claims under a fresh opaque token and returns it.
func (s *TokenStore) Issue(ctx context.Context, claims Claims) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, tokenKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Lookup resolves a token back to its claims. Unknown or expired tokens
// yield shared.ErrInvalidToken.
func (s *TokenStore) Lookup(ctx context.Context, token string) (Claims, error) {
	if token == "" {
		return Claims{}, shared.ErrInvalidToken
	}
	payload, err := s.client.Get(ctx, tokenKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Claims{}, shared.ErrInvalidToken
		}
		return Claims{}, err
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, shared.ErrInvalidToken
	}
	if claims.UserID == "" {
		return Claims{}, shared.ErrInvalidToken
	}
	return claims, nil
}

// Revoke drops a token immediately.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	err := s.client.Del(ctx, tokenKeyPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func generateToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
