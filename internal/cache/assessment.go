package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/ppiankov/trustlens/internal/model"
)

// DefaultTTL is the validity window of an assessment
const DefaultTTL = 24 * time.Hour

// AssessmentCache stores whole assessments keyed by subject id.
// Backend failures degrade to misses and are logged.
type AssessmentCache struct {
	backend Cache
	clock   clockwork.Clock
	logger  zerolog.Logger
}

// NewAssessmentCache wraps a backend; a nil backend never hits
func NewAssessmentCache(backend Cache, clock clockwork.Clock, logger zerolog.Logger) *AssessmentCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AssessmentCache{
		backend: backend,
		clock:   clock,
		logger:  logger.With().Str("component", "cache").Logger(),
	}
}

// Get returns the stored assessment while now < expiresAt
func (c *AssessmentCache) Get(ctx context.Context, subjectID string) (*model.Assessment, bool) {
	if c.backend == nil {
		return nil, false
	}

	data, err := c.backend.Get(ctx, Key(subjectID))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn().Err(err).Str("subject_id", subjectID).Msg("cache read failed")
		}
		return nil, false
	}

	var a model.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		c.logger.Warn().Err(err).Str("subject_id", subjectID).Msg("discarding undecodable cache entry")
		return nil, false
	}

	if !a.ValidAt(c.clock.Now()) {
		return nil, false
	}

	return &a, true
}

// Put stores an assessment for the rest of its validity window
func (c *AssessmentCache) Put(ctx context.Context, a *model.Assessment) error {
	if c.backend == nil || a == nil {
		return nil
	}

	ttl := a.ExpiresAt.Sub(c.clock.Now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}

	if err := c.backend.Set(ctx, Key(a.SubjectID), data, ttl); err != nil {
		c.logger.Warn().Err(err).Str("subject_id", a.SubjectID).Msg("cache write failed")
		if !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}
	return nil
}

// Invalidate deletes one entry
func (c *AssessmentCache) Invalidate(ctx context.Context, subjectID string) error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Delete(ctx, Key(subjectID))
}

// Clear drops every stored assessment
func (c *AssessmentCache) Clear(ctx context.Context) error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Clear(ctx)
}

// New builds the configured backend stack: memory in front of Redis when a
// URL is configured, otherwise memory in front of disk. Disabled returns nil.
func New(cfg model.CacheConfig, clock clockwork.Clock) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	memTTL := cfg.MemoryTTL
	if memTTL <= 0 {
		memTTL = 30 * time.Minute
	}
	memory := NewMemoryCache(memTTL, 10*time.Minute)

	if cfg.RedisURL != "" {
		durable, err := NewRedisCacheFromURL(cfg.RedisURL, ttl)
		if err != nil {
			return nil, err
		}
		return NewLayeredCache(memory, durable, memTTL), nil
	}

	if cfg.Dir == "" {
		return memory, nil
	}
	return NewLayeredCache(memory, NewDiskCache(cfg.Dir, ttl, clock), memTTL), nil
}
