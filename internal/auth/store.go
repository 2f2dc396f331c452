// Copyright (c) 2026 Murof. All rights reserved.

package auth

import (
	"context"
	"errors"
	"time"
)

// # Store Errors

// Sentinel errors surfaced by [IdentityRepository.Create] when a unique
// constraint rejects the new record. The service maps these onto the
// caller-visible error policy (duplicate usernames are reported, duplicate
// emails are handled silently).
var (
	ErrUsernameExists = errors.New("auth: username already exists")
	ErrEmailExists    = errors.New("auth: email already exists")
)

// # Repository Contracts

// IdentityRepository defines persistence operations for authentication
// records. Implementations must enforce case-sensitive uniqueness of both
// username and email at the storage layer.
type IdentityRepository interface {
	// Create persists a new identity. It returns [ErrUsernameExists] or
	// [ErrEmailExists] when the corresponding unique constraint rejects
	// the record.
	Create(ctx context.Context, identity *Identity) error

	// FindByID retrieves an identity by its primary key.
	FindByID(ctx context.Context, id string) (*Identity, error)

	// FindByUsername retrieves an identity by its exact username.
	FindByUsername(ctx context.Context, username string) (*Identity, error)

	// FindByEmail retrieves an identity by its exact email address.
	FindByEmail(ctx context.Context, email string) (*Identity, error)

	// MarkVerified transitions the identity to the verified state.
	// Calling it on an already-verified identity is a no-op.
	MarkVerified(ctx context.Context, id string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// UpdateLastLogin records the time of a successful login.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// Delete permanently removes the identity and its credentials.
	Delete(ctx context.Context, id string) error
}

// TokenGuard tracks short-lived token state that cannot live inside the
// tokens themselves: single-use consumption of password-reset tokens and
// throttling of verification-email resends.
type TokenGuard interface {
	// MarkUsed records the token ID as consumed for at least ttl and
	// reports whether this call was the first to do so. A false return
	// means the token was already spent.
	MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)

	// ThrottleResend reports whether a verification email may be sent to
	// the address, and if so starts a new throttle window of the given
	// interval. A false return means the window is still open.
	ThrottleResend(ctx context.Context, email string, interval time.Duration) (bool, error)
}
