package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "cfms:revoked:"

// RevokedTokenRepository tracks access tokens invalidated before expiry.
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type revokedTokenRepository struct {
	client *redis.Client
}

// NewRevokedTokenRepository returns a Redis-backed denylist. Entries expire
// together with the token they revoke. A nil client disables revocation.
func NewRevokedTokenRepository(client *redis.Client) RevokedTokenRepository {
	if client == nil {
		return disabledRevocations{}
	}
	return &revokedTokenRepository{client: client}
}

func (r *revokedTokenRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err()
}

func (r *revokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type disabledRevocations struct{}

func (disabledRevocations) Revoke(context.Context, string, time.Duration) error {
	return nil
}

func (disabledRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, nil
}
