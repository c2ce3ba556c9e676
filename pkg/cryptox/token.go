package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// Random token sizes in bytes, before base64url encoding.
const (
	TokenSize128 = 16 // 22 characters
	TokenSize256 = 32 // 43 characters
)

// GenerateToken returns size bytes from crypto/rand, base64url encoded
// without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RandomInRange draws uniformly from [lo, hi] using crypto/rand.
func RandomInRange(lo, hi int64) (int64, error) {
	if hi < lo {
		return 0, fmt.Errorf("cryptox: empty range [%d, %d]", lo, hi)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(hi-lo+1))
	if err != nil {
		return 0, fmt.Errorf("cryptox: read random: %w", err)
	}
	return lo + n.Int64(), nil
}

// FingerprintToken hashes a secret into a stable key, so limiter buckets and
// log lines can refer to a correlation key without holding it.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
