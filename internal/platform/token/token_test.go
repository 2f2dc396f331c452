// Copyright (c) 2026 Murof. All rights reserved.

package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murof-net/backend/internal/platform/apperr"
	"github.com/murof-net/backend/internal/platform/token"
)

const testSecret = "test-signing-secret-do-not-use-in-production"

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()

	codec, err := token.NewCodec(testSecret, "HS256", "murof.net", token.TTLTable{
		Access:            30 * time.Minute,
		Refresh:           7 * 24 * time.Hour,
		EmailVerification: 24 * time.Hour,
		PasswordReset:     10 * time.Minute,
	})
	require.NoError(t, err)
	return codec
}

/*
TestNewCodec_RejectsBadConfiguration verifies the constructor's guard rails:
no empty secret, HMAC algorithms only.
*/
func TestNewCodec_RejectsBadConfiguration(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		algorithm string
	}{
		{"empty_secret", "", "HS256"},
		{"asymmetric_algorithm", testSecret, "RS256"},
		{"unknown_algorithm", testSecret, "bogus"},
		{"none_algorithm", testSecret, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := token.NewCodec(tt.secret, tt.algorithm, "murof.net", token.TTLTable{})
			assert.Error(t, err)
		})
	}
}

/*
TestCodec_IssueAndVerify checks the roundtrip for every token kind.
*/
func TestCodec_IssueAndVerify(t *testing.T) {
	codec := newTestCodec(t)

	kinds := []token.Kind{
		token.KindAccess,
		token.KindRefresh,
		token.KindEmailVerification,
		token.KindPasswordReset,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			signed, err := codec.Issue("subject-1", kind)
			require.NoError(t, err)
			assert.NotEmpty(t, signed)

			claims, err := codec.Verify(signed, kind)
			require.NoError(t, err)
			assert.Equal(t, "subject-1", claims.Subject)
			assert.Equal(t, kind, claims.Kind())
			assert.Equal(t, "murof.net", claims.Issuer)
			assert.NotEmpty(t, claims.ID)
		})
	}
}

/*
TestCodec_UsernameClaim verifies the convenience claim on session tokens.
*/
func TestCodec_UsernameClaim(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.IssueWithUsername("user-1", "johndoe", token.KindAccess)
	require.NoError(t, err)

	claims, err := codec.Verify(signed, token.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "johndoe", claims.Username)
}

/*
TestCodec_KindMismatch ensures a token is only accepted in the context it was
issued for, and that the failure is indistinguishable from any other
verification failure.
*/
func TestCodec_KindMismatch(t *testing.T) {
	codec := newTestCodec(t)

	refresh, err := codec.Issue("user-1", token.KindRefresh)
	require.NoError(t, err)

	claims, err := codec.Verify(refresh, token.KindAccess)
	assert.Nil(t, claims)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INVALID_TOKEN", ae.Code)
	assert.Equal(t, "Invalid or expired token", ae.Message)
}

/*
TestCodec_ExpiredToken verifies that a token past its TTL is rejected with the
same uniform error. A codec with a negative TTL issues tokens that are already
expired.
*/
func TestCodec_ExpiredToken(t *testing.T) {
	expiredCodec, err := token.NewCodec(testSecret, "HS256", "murof.net", token.TTLTable{
		Access: -time.Minute,
	})
	require.NoError(t, err)

	signed, err := expiredCodec.Issue("user-1", token.KindAccess)
	require.NoError(t, err)

	_, err = expiredCodec.Verify(signed, token.KindAccess)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INVALID_TOKEN", ae.Code)
}

/*
TestCodec_TamperedToken verifies signature enforcement.
*/
func TestCodec_TamperedToken(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Issue("user-1", token.KindAccess)
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered, token.KindAccess)
	assert.Error(t, err)
}

/*
TestCodec_WrongSecret verifies that tokens from another signer are rejected.
*/
func TestCodec_WrongSecret(t *testing.T) {
	codec := newTestCodec(t)

	other, err := token.NewCodec("a-completely-different-secret", "HS256", "murof.net", token.TTLTable{
		Access: time.Hour,
	})
	require.NoError(t, err)

	signed, err := other.Issue("user-1", token.KindAccess)
	require.NoError(t, err)

	_, err = codec.Verify(signed, token.KindAccess)
	assert.Error(t, err)
}

/*
TestCodec_GarbageInput verifies that non-JWT strings fail cleanly.
*/
func TestCodec_GarbageInput(t *testing.T) {
	codec := newTestCodec(t)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Verify(input, token.KindAccess)
		assert.Error(t, err, "input %q", input)
	}
}

/*
TestCodec_TTL checks the per-kind TTL accessor.
*/
func TestCodec_TTL(t *testing.T) {
	codec := newTestCodec(t)

	assert.Equal(t, 30*time.Minute, codec.TTL(token.KindAccess))
	assert.Equal(t, 10*time.Minute, codec.TTL(token.KindPasswordReset))
}
