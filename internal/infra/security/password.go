package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes, so longer inputs are rejected
// instead of silently truncated.
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("security: password exceeds 72 bytes")

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.effectiveCost())
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (h BcryptHasher) effectiveCost() int {
	switch {
	case h.Cost < bcrypt.MinCost:
		return bcrypt.DefaultCost
	case h.Cost > bcrypt.MaxCost:
		return bcrypt.MaxCost
	default:
		return h.Cost
	}
}
