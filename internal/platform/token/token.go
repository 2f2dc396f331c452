// Copyright (c) 2026 Murof. All rights reserved.

/*
Package token implements the signed, self-contained token codec used by the
authentication subsystem.

Every token the platform issues is a compact JWT carrying a subject, a kind
(access, refresh, email_verification, password_reset), and an absolute expiry
derived from a kind-specific time-to-live. Tokens are never persisted; they
are reconstructed entirely by signature verification.

Architecture:

  - Codec: Holds the process-wide signing secret and the TTL table, both
    loaded once at startup and immutable afterwards.
  - Kinds: A token is only accepted in the context it was issued for. A
    refresh token presented where an access token is expected fails exactly
    like a forged one.
  - Uniformity: Verification failures collapse into a single
    [apperr.InvalidToken] so callers (and attackers) cannot distinguish
    expired from tampered from wrong-kind. The internal cause is kept on the
    error for server-side logs.

Verification is pure computation: no I/O, no blocking, safe for concurrent use.
*/
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/murof-net/backend/internal/platform/apperr"
	"github.com/murof-net/backend/pkg/uuidv7"
)

// # Token Kinds

// Kind determines a token's validity window and acceptance context.
type Kind string

const (
	// KindAccess authorizes API requests. Subject is the identity ID.
	KindAccess Kind = "access"

	// KindRefresh mints new access tokens. Subject is the identity ID.
	KindRefresh Kind = "refresh"

	// KindEmailVerification activates an account. Subject is the email address.
	KindEmailVerification Kind = "email_verification"

	// KindPasswordReset authorizes a password reset. Subject is the email address.
	KindPasswordReset Kind = "password_reset"
)

// # Claims

// Claims is the payload embedded inside every Murof token.
//
// The kind travels in the "type" claim, matching the wire format the mobile
// and web clients already parse. Username is a convenience claim carried on
// access and refresh tokens so the active user context can be reconstructed
// without a database query on every request.
type Claims struct {
	jwt.RegisteredClaims

	TokenKind string `json:"type"`
	Username  string `json:"username,omitempty"`
}

// Kind returns the token kind carried in the claims.
func (c *Claims) Kind() Kind { return Kind(c.TokenKind) }

// # TTL Policy

// TTLTable maps each token kind to its validity window.
//
// Values come from configuration; the zero value is not usable.
type TTLTable struct {
	Access            time.Duration
	Refresh           time.Duration
	EmailVerification time.Duration
	PasswordReset     time.Duration
}

// forKind resolves the TTL for a kind. Unknown kinds get the shortest window.
func (t TTLTable) forKind(kind Kind) time.Duration {
	switch kind {
	case KindAccess:
		return t.Access
	case KindRefresh:
		return t.Refresh
	case KindEmailVerification:
		return t.EmailVerification
	case KindPasswordReset:
		return t.PasswordReset
	default:
		return t.PasswordReset
	}
}

// # Codec

// Codec signs and verifies typed, expiring tokens with a process-wide
// symmetric secret (HMAC).
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	ttl    TTLTable

	// now is injectable for expiry tests; defaults to time.Now.
	now func() time.Time
}

// NewCodec constructs a [Codec].
//
// algorithm must be one of HS256, HS384, HS512. The secret and TTL table are
// read-only after construction.
func NewCodec(secret, algorithm, issuer string, ttl TTLTable) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("token: signing secret must not be empty")
	}

	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token: unsupported signing algorithm %q", algorithm)
	}

	return &Codec{
		secret: []byte(secret),
		method: method,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue produces a signed token of the given kind for the subject.
//
// The expiry is absolute: issued-at plus the kind's TTL from the table.
// Every token carries a fresh JWT ID so single-use kinds can be tracked.
func (c *Codec) Issue(subject string, kind Kind) (string, error) {
	return c.IssueWithUsername(subject, "", kind)
}

// IssueWithUsername is [Codec.Issue] with the convenience username claim set.
// Used for access and refresh tokens.
func (c *Codec) IssueWithUsername(subject, username string, kind Kind) (string, error) {
	issuedAt := c.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			ID:        uuidv7.New(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl.forKind(kind))),
		},
		TokenKind: string(kind),
		Username:  username,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: failed to sign %s token: %w", kind, err)
	}

	return signed, nil
}

// Verify checks a token's signature, expiry, and kind.
//
// It returns the embedded claims only if the signature is valid, the token is
// unexpired, AND the kind matches expected. Any failure returns the uniform
// [apperr.InvalidToken]; callers must not branch on the cause.
func (c *Codec) Verify(tokenString string, expected Kind) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("token: unexpected signing method %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, apperr.InvalidToken(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperr.InvalidToken(fmt.Errorf("token: malformed claims"))
	}

	if claims.Kind() != expected {
		return nil, apperr.InvalidToken(
			fmt.Errorf("token: kind mismatch: got %q, want %q", claims.TokenKind, expected))
	}

	return claims, nil
}

// TTL exposes the configured validity window for a kind.
//
// The redis single-use guard uses it to bound how long a consumed JWT ID
// must be remembered.
func (c *Codec) TTL(kind Kind) time.Duration {
	return c.ttl.forKind(kind)
}
