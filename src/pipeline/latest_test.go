package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestKeepsNewestSubmission(t *testing.T) {
	l := NewLatest()

	older := Outcome{Seq: 1, State: StateRendered}
	newer := Outcome{Seq: 2, State: StateErrored}

	assert.True(t, l.Offer("client", newer))
	assert.False(t, l.Offer("client", older), "a late older run must be discarded")

	got, ok := l.Get("client")
	require.True(t, ok)
	assert.Equal(t, uint64(2), got.Seq)

	assert.True(t, l.Offer("other", older))
	l.Forget("client")
	_, ok = l.Get("client")
	assert.False(t, ok)
}

func TestLatestExpiresEntries(t *testing.T) {
	l := NewLatestWithLimits(time.Minute, 100)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	require.True(t, l.Offer("client", Outcome{Seq: 5, State: StateRendered}))
	now = now.Add(59 * time.Second)
	_, ok := l.Get("client")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = l.Get("client")
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())

	// An expired newer run no longer shadows a fresh older one.
	require.True(t, l.Offer("other", Outcome{Seq: 9}))
	now = now.Add(time.Hour)
	assert.True(t, l.Offer("other", Outcome{Seq: 3}))
}

func TestLatestSweepsExpiredKeysOnOffer(t *testing.T) {
	l := NewLatestWithLimits(time.Minute, 1_000_000)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < cleanupEvery-1; i++ {
		l.Offer(fmt.Sprintf("client-%d", i), Outcome{Seq: uint64(i)})
	}
	now = now.Add(2 * time.Minute)
	l.Offer("fresh", Outcome{Seq: 1000})

	assert.Equal(t, 1, l.Len())
}

func TestLatestCapsKeys(t *testing.T) {
	const limit = 50
	l := NewLatestWithLimits(time.Hour, limit)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 10*limit; i++ {
		now = now.Add(time.Millisecond)
		l.Offer(fmt.Sprintf("client-%d", i), Outcome{Seq: uint64(i)})
	}

	assert.Equal(t, limit, l.Len())
	_, ok := l.Get("client-0")
	assert.False(t, ok, "oldest keys are evicted first")
	got, ok := l.Get(fmt.Sprintf("client-%d", 10*limit-1))
	require.True(t, ok)
	assert.Equal(t, uint64(10*limit-1), got.Seq)
}
