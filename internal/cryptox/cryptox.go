// Package cryptox provides the salted password hashing primitive used by
// the authentication core. Hashes are argon2id with fixed parameters, so a
// given (password, salt) pair always yields the same bytes.
package cryptox

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const SaltSize = 16

type Argon2 struct{}

func (Argon2) Hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
}

func (Argon2) NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
