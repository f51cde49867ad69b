package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// SlidingWindowStore counts each client's requests inside a trailing time
// window. It plugs into echo's RateLimiter middleware.
type SlidingWindowStore struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	now    func() time.Time
}

func NewSlidingWindowStore(limit int, window time.Duration) *SlidingWindowStore {
	return &SlidingWindowStore{
		limit:  limit,
		window: window,
		hits:   map[string][]time.Time{},
		now:    time.Now,
	}
}

// Allow records the request and admits it while the trailing window holds
// fewer than limit requests.
func (s *SlidingWindowStore) Allow(identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	recent := s.hits[identifier][:0]
	for _, t := range s.hits[identifier] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= s.limit {
		s.hits[identifier] = recent
		return false, nil
	}
	s.hits[identifier] = append(recent, now)
	return true, nil
}

// RateLimit applies the sliding window per client IP and answers 429 when
// the quota is exceeded.
func RateLimit(limit int, window time.Duration) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: NewSlidingWindowStore(limit, window),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}
