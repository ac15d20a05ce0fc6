package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidAdminKey = errors.New("invalid admin key")

// AdminKeyChecker verifies the shared admin key guarding the asset
// registry endpoints. Only the bcrypt hash is configured; the plaintext
// key never touches disk.
type AdminKeyChecker struct {
	hash []byte
}

func NewAdminKeyChecker(keyHash string) *AdminKeyChecker {
	return &AdminKeyChecker{hash: []byte(keyHash)}
}

func (c *AdminKeyChecker) Check(key string) error {
	if len(c.hash) == 0 {
		return ErrInvalidAdminKey
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(key)); err != nil {
		return ErrInvalidAdminKey
	}
	return nil
}

// HashAdminKey generates a bcrypt hash for configuration, used by the
// cronjob binary's -hash-key flag.
func HashAdminKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
