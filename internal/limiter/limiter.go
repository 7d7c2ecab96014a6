//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package limiter

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultCapacity = 100
	DefaultWindow   = 60 * time.Second

	keyPrefix = "ratelimit:"
)

// ErrUnavailable means the window state could not be read or written.
// Callers must not treat it as either an admission or a denial.
var ErrUnavailable = errors.New("rate limiter unavailable")

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter admits or denies one request for a key. Admission is recorded
// atomically with the check; a denial records nothing.
type Limiter interface {
	Check(ctx context.Context, key string) (Decision, error)
}

type Config struct {
	Capacity int
	Window   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	return c
}

func BuildKey(key string) string {
	return keyPrefix + key
}

func deny(capacity int, resetAt time.Time) Decision {
	return Decision{Allowed: false, Limit: capacity, Remaining: 0, ResetAt: resetAt}
}
