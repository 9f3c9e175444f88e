package security_test

import (
	"testing"

	"akun/internal/security"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	hash, err := security.HashPassword("secret1")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret1", hash)

	// Independent salts: hashing twice never repeats.
	again, err := security.HashPassword("secret1")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("secret1")
	assert.NoError(t, err)

	assert.True(t, security.VerifyPassword("secret1", hash))
	assert.False(t, security.VerifyPassword("secret2", hash))
	assert.False(t, security.VerifyPassword("", hash))
	assert.False(t, security.VerifyPassword("secret1", "not-a-bcrypt-hash"))
}
