package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPRepository stores password-reset codes in Redis with a TTL. Keeping the
// codes out of process memory lets any instance verify a code issued by
// another one.
type OTPRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPRepository builds repository.
func NewOTPRepository(client *redis.Client, ttl time.Duration) *OTPRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPRepository{client: client, ttl: ttl}
}

func (r *OTPRepository) key(email string) string {
	return "password-reset:otp:" + email
}

// Store saves the code for the email, replacing any previous one.
func (r *OTPRepository) Store(ctx context.Context, email, code string) error {
	if err := r.client.Set(ctx, r.key(email), code, r.ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Verify checks the code and consumes it on success. An expired or missing
// code verifies as false, not as an error.
func (r *OTPRepository) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := r.client.Get(ctx, r.key(email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load otp: %w", err)
	}
	if stored != code {
		return false, nil
	}
	if err := r.client.Del(ctx, r.key(email)).Err(); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return true, nil
}
