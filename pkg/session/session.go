// Package session stores ephemeral chart handles.
//
// A handle binds an id to a set of records and layout options so that an
// embedded widget can fetch layouts for whatever width it measures, and so
// that selection events can be routed to the host page. Handles live in a
// [cache.Cache] with a TTL:
//   - memory: single server process, tests
//   - redis: several replicas sharing handles
//
// Handles are not persistence. Once expired they report EXPIRED for a grace
// period and then vanish (NOT_FOUND).
//
// # Usage
//
//	store := session.NewStore(cache.NewMemoryCache(), nil, session.DefaultTTL)
//	c, err := store.Create(ctx, records, opts)
//	...
//	c, err = store.Get(ctx, c.ID)
//	if errors.Is(err, errors.ErrCodeExpired) {
//	    // ask the host to create a new handle
//	}
package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stackbar/pkg/cache"
	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/errors"
	"github.com/matzehuels/stackbar/pkg/pipeline"
)

// Default durations.
const (
	// DefaultTTL is how long a handle stays usable.
	DefaultTTL = cache.ChartTTL

	// ExpiredGrace is how long an expired handle keeps reporting EXPIRED
	// before it is dropped from the cache.
	ExpiredGrace = 10 * time.Minute
)

// Chart is one chart handle.
type Chart struct {
	ID        string           `json:"id"`
	Records   []chart.Record   `json:"records"`
	Options   pipeline.Options `json:"options"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// IsExpired reports whether the handle is past its TTL at now.
func (c *Chart) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Store keeps chart handles in a cache.
type Store struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
	now   func() time.Time
}

// NewStore returns a store. A nil keyer uses the default keyer and a
// non-positive ttl uses DefaultTTL.
func NewStore(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Store {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: c, keyer: keyer, ttl: ttl, now: time.Now}
}

// TTL returns the handle lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// Create validates records and opts and stores a new handle.
// Records are checked up front so that a malformed series is reported to
// the creator rather than to every widget that loads the handle.
func (s *Store) Create(ctx context.Context, records []chart.Record, opts pipeline.Options) (*Chart, error) {
	if records == nil {
		records = []chart.Record{}
	}
	if _, _, err := chart.Normalize(records); err != nil {
		return nil, err
	}
	if len(opts.Palette) > 0 {
		palette, err := chart.ParsePalette(opts.Palette)
		if err != nil {
			return nil, err
		}
		opts.Palette = palette
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	now := s.now()
	c := &Chart{
		ID:        uuid.NewString(),
		Records:   records,
		Options:   opts,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get loads a handle. Unknown ids return NOT_FOUND, expired handles EXPIRED
// and malformed ids INVALID_INPUT.
func (s *Store) Get(ctx context.Context, id string) (*Chart, error) {
	if err := errors.ValidateChartID(id); err != nil {
		return nil, err
	}

	var data []byte
	var hit bool
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = s.cache.Get(ctx, s.keyer.ChartKey(id))
		return retryable(err)
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCache, err, "load chart %s", id)
	}
	if !hit {
		return nil, errors.New(errors.ErrCodeNotFound, "chart %s not found", id)
	}

	var c Chart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCache, err, "decode chart %s", id)
	}
	if c.IsExpired(s.now()) {
		return nil, errors.New(errors.ErrCodeExpired, "chart %s expired at %s", id, c.ExpiresAt.Format(time.RFC3339))
	}
	return &c, nil
}

// Delete drops a handle. Unknown ids return NOT_FOUND.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil && !errors.Is(err, errors.ErrCodeExpired) {
		return err
	}
	if err := s.cache.Delete(ctx, s.keyer.ChartKey(id)); err != nil {
		return errors.Wrap(errors.ErrCodeCache, err, "delete chart %s", id)
	}
	return nil
}

func (s *Store) put(ctx context.Context, c *Chart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode chart")
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return retryable(s.cache.Set(ctx, s.keyer.ChartKey(c.ID), data, s.ttl+ExpiredGrace))
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeCache, err, "store chart %s", c.ID)
	}
	return nil
}

// retryable marks backend unavailability as transient.
func retryable(err error) error {
	if err != nil && stderrors.Is(err, cache.ErrUnavailable) {
		return cache.Retryable(err)
	}
	return err
}
