package limiter

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryLimiter is the single-process counterpart of RedisLimiter. It keeps
// the same sliding-window log per key in a mutex guarded map.
type MemoryLimiter struct {
	mu      sync.Mutex
	cfg     Config
	now     func() time.Time
	windows map[string][]time.Time
}

func NewMemoryLimiter(cfg Config, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		cfg:     cfg.withDefaults(),
		now:     now,
		windows: make(map[string][]time.Time),
	}
}

func (m *MemoryLimiter) Check(ctx context.Context, key string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if m.cfg.Capacity <= 0 {
		return deny(m.cfg.Capacity, m.now().Add(m.cfg.Window)), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entries := prune(m.windows[key], now.Add(-m.cfg.Window))
	if len(entries) >= m.cfg.Capacity {
		m.windows[key] = entries
		return deny(m.cfg.Capacity, entries[0].Add(m.cfg.Window)), nil
	}

	// Entries stay sorted even if the wall clock steps back.
	i := sort.Search(len(entries), func(i int) bool { return entries[i].After(now) })
	entries = slices.Insert(entries, i, now)
	m.windows[key] = entries
	return Decision{
		Allowed:   true,
		Limit:     m.cfg.Capacity,
		Remaining: m.cfg.Capacity - len(entries),
		ResetAt:   entries[0].Add(m.cfg.Window),
	}, nil
}

// Cleanup drops keys whose every admission has aged out and returns how
// many were removed.
func (m *MemoryLimiter) Cleanup(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-m.cfg.Window)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entries := range m.windows {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		entries = prune(entries, cutoff)
		if len(entries) == 0 {
			delete(m.windows, key)
			removed++
			continue
		}
		m.windows[key] = entries
	}
	return removed, nil
}

// Len reports the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// prune removes entries older than cutoff. An entry exactly at the cutoff
// still counts.
func prune(entries []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(entries) && entries[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return entries
	}
	return append(entries[:0], entries[i:]...)
}
