// Package cryptox hashes and verifies user passwords with argon2id.
package cryptox

import (
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltLen = 16
	keyLen  = 32
)

var ErrMalformedHash = errors.New("malformed password hash")

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keyLen)
}

// HashPassword returns salt||key for storage in users.password_hash.
func HashPassword(password []byte) []byte {
	salt := common.GenerateRandByteArray(saltLen)
	return append(salt, deriveKey(password, salt)...)
}

// VerifyPassword reports whether password matches a value produced by HashPassword.
// The key comparison is constant time.
func VerifyPassword(stored, password []byte) (bool, error) {
	if len(stored) != saltLen+keyLen {
		return false, ErrMalformedHash
	}
	salt, key := stored[:saltLen], stored[saltLen:]
	candidate := deriveKey(password, salt)
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}
