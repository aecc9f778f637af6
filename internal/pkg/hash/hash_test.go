package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSHA256_Deterministic(t *testing.T) {
	h := NewHMACSHA256("secret")

	first, err := h.Hash("3201234567890123")
	require.NoError(t, err)
	second, err := h.Hash("3201234567890123")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.True(t, h.Verify(string(first), "3201234567890123"))
	assert.False(t, h.Verify(string(first), "3201234567890124"))

	other, err := NewHMACSHA256("other").Hash("3201234567890123")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestBcrypt(t *testing.T) {
	h := NewBcrypt(4, "pepper")

	hashed, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.True(t, h.Verify(string(hashed), "secret123"))
	assert.False(t, h.Verify(string(hashed), "secret124"))
	assert.False(t, NewBcrypt(4, "").Verify(string(hashed), "secret123"))
}

func TestArgon2id(t *testing.T) {
	h := NewArgon2idWithParams(Argon2idParams{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16,
	}, "pepper")

	hashed, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.Contains(t, string(hashed), "$argon2id$v=19$m=1024,t=1,p=1$")
	assert.True(t, h.Verify(string(hashed), "secret123"))
	assert.False(t, h.Verify(string(hashed), "secret124"))
	assert.False(t, h.Verify("$bcrypt$x", "secret123"))
	assert.False(t, h.Verify("", "secret123"))
}

func TestNewPassword(t *testing.T) {
	h, err := NewPassword(PasswordOptions{BcryptCost: 4})
	require.NoError(t, err)
	assert.IsType(t, &Bcrypt{}, h)

	h, err = NewPassword(PasswordOptions{Driver: "ARGON2ID"})
	require.NoError(t, err)
	assert.IsType(t, &Argon2id{}, h)

	_, err = NewPassword(PasswordOptions{Driver: "md5"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
