package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"mymemorycard.com/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitError carries the remaining cooldown so handlers can set Retry-After.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Trop de requêtes. Réessayez dans %d secondes.", int(e.RetryAfter.Seconds()+0.5))
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Guard checks the cooldown and converts a refusal into a *RateLimitError.
// Redis failures do not block the caller.
func Guard(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string, limit time.Duration) error {
	allowed, err := CheckAndSetRateLimit(ctx, rdb, userID, action, limit)
	if err != nil || allowed {
		return nil
	}

	ttl, err := GetRateLimitTTL(ctx, rdb, userID, action)
	if err != nil || ttl < 0 {
		ttl = limit
	}
	return &RateLimitError{RetryAfter: ttl}
}
