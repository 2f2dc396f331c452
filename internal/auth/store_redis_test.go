// Copyright (c) 2026 Murof. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murof-net/backend/internal/auth"
)

func TestRedisTokenGuard_MarkUsed(t *testing.T) {
	t.Run("first_use", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSetNX("auth:used_token:jti-1", "1", 10*time.Minute).SetVal(true)

		guard := auth.NewTokenGuard(client)
		first, err := guard.MarkUsed(context.Background(), "jti-1", 10*time.Minute)
		require.NoError(t, err)
		assert.True(t, first)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already_spent", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSetNX("auth:used_token:jti-1", "1", 10*time.Minute).SetVal(false)

		guard := auth.NewTokenGuard(client)
		first, err := guard.MarkUsed(context.Background(), "jti-1", 10*time.Minute)
		require.NoError(t, err)
		assert.False(t, first)
	})

	t.Run("connectivity_error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSetNX("auth:used_token:jti-1", "1", 10*time.Minute).
			SetErr(errors.New("connection refused"))

		guard := auth.NewTokenGuard(client)
		_, err := guard.MarkUsed(context.Background(), "jti-1", 10*time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestRedisTokenGuard_ThrottleResend(t *testing.T) {
	t.Run("window_open", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSetNX("auth:resend:johndoe@example.com", "1", 15*time.Minute).SetVal(true)

		guard := auth.NewTokenGuard(client)
		allowed, err := guard.ThrottleResend(context.Background(), "johndoe@example.com", 15*time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("window_closed", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSetNX("auth:resend:johndoe@example.com", "1", 15*time.Minute).SetVal(false)

		guard := auth.NewTokenGuard(client)
		allowed, err := guard.ThrottleResend(context.Background(), "johndoe@example.com", 15*time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}
