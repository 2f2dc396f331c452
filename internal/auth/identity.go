// Copyright (c) 2026 Murof. All rights reserved.

/*
Package auth implements the authentication and session-token subsystem.

It covers the full account lifecycle — registration, email verification,
login, access/refresh token issuance, password reset, and account removal —
over a PostgreSQL credential store and an email notification collaborator.

# Architecture

  - Identity: The persisted authentication record. Its lifecycle is the only
    state machine in the system: Unregistered → PendingVerification → Active.
  - Service: Orchestrates the operations and owns every security decision
    (which failures collapse into generic errors, what the caller may learn).
  - Repositories: Domain-defined interfaces with PostgreSQL and Redis
    implementations alongside.

Uniqueness of username and email is enforced by the credential store's unique
indexes; concurrent registrations race on those, never on in-process locks.
*/
package auth

import "time"

// # Domain Entities

// Identity represents a registered account's authentication record.
//
// IsVerified is monotonic: it moves false→true on email verification and
// never reverts. PasswordHash is excluded from JSON and must never be logged
// or compared in plaintext.
type Identity struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsVerified   bool       `json:"is_verified"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Profile is the caller-visible projection of an [Identity].
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// # Field Identifiers

// Global field names for validation and response mapping in the authentication domain.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldIdentifier   = "identifier"
	FieldToken        = "token"
	FieldNewPassword  = "new_password"
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
	FieldTokenType    = "token_type"
	FieldMessage      = "message"
)
