package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const defaultTokenBytes = 32

// RandomTokenGenerator mints opaque session tokens from the OS entropy pool.
// Tokens carry no embedded claims; the session store is the source of truth.
type RandomTokenGenerator struct {
	Size int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	n := g.Size
	if n <= 0 {
		n = defaultTokenBytes
	}
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("token: entropy read failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
