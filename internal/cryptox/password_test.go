package cryptox

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundtrip(t *testing.T) {
	h := HashPassword([]byte("s3cret"))
	require.Len(t, h, saltLen+keyLen)

	ok, err := VerifyPassword(h, []byte("s3cret"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(h, []byte("wrong"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_RandomSalt(t *testing.T) {
	a := HashPassword([]byte("same"))
	b := HashPassword([]byte("same"))
	assert.False(t, bytes.Equal(a, b), "two hashes of one password must differ by salt")
}

func TestVerifyPassword_Malformed(t *testing.T) {
	_, err := VerifyPassword([]byte("short"), []byte("x"))
	assert.True(t, errors.Is(err, ErrMalformedHash))
}
