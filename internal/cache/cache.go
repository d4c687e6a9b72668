package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrMiss is returned when a key is absent or expired
	ErrMiss = errors.New("cache miss")

	// ErrUnavailable wraps backend failures; callers treat it as a miss
	ErrUnavailable = errors.New("cache unavailable")
)

// KeyPrefix namespaces every stored assessment
const KeyPrefix = "trustlens:v1:"

// Cache defines the byte-level interface shared by every backend
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Key generates a cache key from a subject id
func Key(subjectID string) string {
	hash := sha256.Sum256([]byte(subjectID))
	return KeyPrefix + hex.EncodeToString(hash[:])
}
