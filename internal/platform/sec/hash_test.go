// Copyright (c) 2026 Murof. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murof-net/backend/internal/platform/sec"
)

/*
TestHashPassword_Roundtrip verifies hashing and verification of a password.
*/
func TestHashPassword_Roundtrip(t *testing.T) {
	hash, err := sec.HashPassword("Sup3r-Secret")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3r-Secret", hash)

	assert.True(t, sec.CheckPasswordHash("Sup3r-Secret", hash))
	assert.False(t, sec.CheckPasswordHash("wrong-password", hash))
}

/*
TestHashPassword_SaltedHashesDiffer verifies that hashing the same password
twice yields different hashes, while both still verify.
*/
func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	first, err := sec.HashPassword("Sup3r-Secret")
	require.NoError(t, err)

	second, err := sec.HashPassword("Sup3r-Secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, sec.CheckPasswordHash("Sup3r-Secret", first))
	assert.True(t, sec.CheckPasswordHash("Sup3r-Secret", second))
}

/*
TestCheckPasswordHash_MalformedHash verifies that garbage stored hashes never
verify, and never panic.
*/
func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	assert.False(t, sec.CheckPasswordHash("Sup3r-Secret", ""))
	assert.False(t, sec.CheckPasswordHash("Sup3r-Secret", "not-a-bcrypt-hash"))
}
