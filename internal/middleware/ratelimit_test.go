package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newFixedClockStore(limit int, window time.Duration) (*SlidingWindowStore, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSlidingWindowStore(limit, window)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSlidingWindowAdmitsUpToLimit(t *testing.T) {
	s, _ := newFixedClockStore(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := s.Allow("1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := s.Allow("1.2.3.4")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSlidingWindowPerIdentifier(t *testing.T) {
	s, _ := newFixedClockStore(1, time.Minute)

	ok, _ := s.Allow("a")
	require.True(t, ok)
	ok, _ = s.Allow("b")
	require.True(t, ok)
	ok, _ = s.Allow("a")
	require.False(t, ok)
}

func TestSlidingWindowReadmitsAfterWindow(t *testing.T) {
	s, now := newFixedClockStore(2, time.Minute)

	ok, _ := s.Allow("x")
	require.True(t, ok)
	ok, _ = s.Allow("x")
	require.True(t, ok)
	ok, _ = s.Allow("x")
	require.False(t, ok)

	// the window slides: after 61s the first two hits fall out
	*now = now.Add(61 * time.Second)
	ok, _ = s.Allow("x")
	require.True(t, ok)
}

func TestSlidingWindowPartialSlide(t *testing.T) {
	s, now := newFixedClockStore(2, time.Minute)

	ok, _ := s.Allow("x")
	require.True(t, ok)

	*now = now.Add(40 * time.Second)
	ok, _ = s.Allow("x")
	require.True(t, ok)

	// first hit is 40s old, still inside the window
	*now = now.Add(10 * time.Second)
	ok, _ = s.Allow("x")
	require.False(t, ok)

	// first hit now 65s old and expired, second is 25s old
	*now = now.Add(15 * time.Second)
	ok, _ = s.Allow("x")
	require.True(t, ok)
}
