// Copyright (c) 2026 Murof. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/murof-net/backend/internal/platform/constants"
)

// RedisTokenGuard implements [TokenGuard] using Redis.
//
// The tokens themselves are stateless signed JWTs, so Redis only holds the
// two pieces of state they cannot carry: which reset-token IDs have been
// spent, and which addresses are inside a resend-throttle window. Every key
// has a TTL, so the guard is self-cleaning.
type RedisTokenGuard struct {
	client *redis.Client
}

// NewTokenGuard creates a new Redis-backed TokenGuard.
func NewTokenGuard(client *redis.Client) *RedisTokenGuard {
	return &RedisTokenGuard{client: client}
}

/*
MarkUsed records the token ID as consumed.

Description: Atomic SETNX — exactly one caller per token ID observes true,
which is what makes password-reset tokens single-use even under concurrent
submissions of the same link.

Parameters:
  - context: context.Context
  - tokenID: string (the token's jti claim)
  - ttl: time.Duration (kept at least as long as the token could still verify)

Returns:
  - bool: true if this call was the first to consume the token
  - error: Connectivity errors
*/
func (guard *RedisTokenGuard) MarkUsed(context context.Context, tokenID string, ttl time.Duration) (bool, error) {
	key := constants.RedisPrefixUsedToken + tokenID

	first, err := guard.client.SetNX(context, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis_token_guard_mark_used_failed: %w", err)
	}

	return first, nil
}

/*
ThrottleResend opens a resend-throttle window for the address.

Description: Atomic SETNX keyed on the email. A true result means the window
was closed and is now open for the given interval; false means a verification
email went out recently and the caller should stay silent.

Parameters:
  - context: context.Context
  - email: string
  - interval: time.Duration

Returns:
  - bool: true if a send is allowed
  - error: Connectivity errors
*/
func (guard *RedisTokenGuard) ThrottleResend(context context.Context, email string, interval time.Duration) (bool, error) {
	key := constants.RedisPrefixResendThrottle + email

	allowed, err := guard.client.SetNX(context, key, "1", interval).Result()
	if err != nil {
		return false, fmt.Errorf("redis_token_guard_throttle_failed: %w", err)
	}

	return allowed, nil
}
