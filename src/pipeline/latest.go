package pipeline

import (
	"sync"
	"time"
)

// Defaults used by NewLatest.
const (
	DefaultLatestTTL = 30 * time.Minute
	DefaultLatestMax = 10000
)

// cleanupEvery is how many Offers pass between sweeps of expired entries.
const cleanupEvery = 256

type latestEntry struct {
	outcome Outcome
	at      time.Time
}

// Latest keeps the newest completed outcome per key, where newest means the
// latest submission. An older run that finishes late is discarded. Entries
// expire after ttl and at most maxKeys keys are held; when full the entry
// recorded longest ago is evicted.
type Latest struct {
	mu      sync.Mutex
	entries map[string]latestEntry
	ttl     time.Duration
	maxKeys int
	offers  int
	now     func() time.Time
}

func NewLatest() *Latest {
	return NewLatestWithLimits(DefaultLatestTTL, DefaultLatestMax)
}

// NewLatestWithLimits bounds the store by age and size. Non-positive values
// fall back to the defaults.
func NewLatestWithLimits(ttl time.Duration, maxKeys int) *Latest {
	if ttl <= 0 {
		ttl = DefaultLatestTTL
	}
	if maxKeys <= 0 {
		maxKeys = DefaultLatestMax
	}
	return &Latest{
		entries: make(map[string]latestEntry),
		ttl:     ttl,
		maxKeys: maxKeys,
		now:     time.Now,
	}
}

// Offer records o under key unless a later submission already completed.
// It reports whether o was kept.
func (l *Latest) Offer(key string, o Outcome) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.offers++
	if l.offers%cleanupEvery == 0 {
		l.cleanup(now)
	}

	cur, ok := l.entries[key]
	if ok && !l.expired(cur, now) && cur.outcome.Seq > o.Seq {
		return false
	}
	if !ok && len(l.entries) >= l.maxKeys {
		l.cleanup(now)
		if len(l.entries) >= l.maxKeys {
			l.evictOldest()
		}
	}
	l.entries[key] = latestEntry{outcome: o, at: now}
	return true
}

// Get returns the outcome held for key, if it has not expired.
func (l *Latest) Get(key string) (Outcome, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		return Outcome{}, false
	}
	if l.expired(e, l.now()) {
		delete(l.entries, key)
		return Outcome{}, false
	}
	return e.outcome, true
}

// Forget drops key.
func (l *Latest) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// Len reports how many keys are held, expired or not.
func (l *Latest) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Latest) expired(e latestEntry, now time.Time) bool {
	return now.Sub(e.at) >= l.ttl
}

func (l *Latest) cleanup(now time.Time) {
	for k, e := range l.entries {
		if l.expired(e, now) {
			delete(l.entries, k)
		}
	}
}

func (l *Latest) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range l.entries {
		if !found || e.at.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.at, true
		}
	}
	if found {
		delete(l.entries, oldestKey)
	}
}
