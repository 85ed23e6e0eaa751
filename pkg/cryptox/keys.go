package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Signing key size constants (in bytes).
const (
	// KeySize256 provides 256 bits of key material, the minimum we accept
	// for HMAC-SHA256 signing keys.
	KeySize256 = 32
	// KeySize512 provides 512 bits of key material. This matches the
	// SHA-256 block size so HMAC uses the key without hashing it down.
	KeySize512 = 64
)

// GenerateKey creates a cryptographically secure random signing key of the
// given byte length. Returns an error if the random number generator fails.
func GenerateKey(size int) ([]byte, error) {
	if size < KeySize256 {
		return nil, fmt.Errorf("key size must be at least %d bytes, got %d", KeySize256, size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	return buf, nil
}

// MustGenerateKey is like GenerateKey but panics on error. Use this only
// during initialization or in tests where failure is unrecoverable.
func MustGenerateKey(size int) []byte {
	key, err := GenerateKey(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate key: %v", err))
	}
	return key
}

// Fingerprint returns a deterministic SHA-256 fingerprint of a token. We
// store fingerprints rather than token values so a leaked database row never
// yields a replayable token.
//
// The fingerprint is returned as a base64url-encoded string (43 chars).
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
