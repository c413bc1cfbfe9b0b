package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"todoapi/internal/core/port"
)

type windowEntry struct {
	Count     int
	ResetTime time.Time
}

// RateLimitStore keeps fixed window counters in process memory. Counters are
// lost on restart and are not shared between instances.
type RateLimitStore struct {
	cache *cache.Cache
	mutex sync.Mutex
	now   func() time.Time
}

func NewRateLimitStore() port.RateLimitStore {
	return newRateLimitStore(time.Now)
}

func newRateLimitStore(now func() time.Time) *RateLimitStore {
	return &RateLimitStore{
		cache: cache.New(5*time.Minute, 10*time.Minute),
		now:   now,
	}
}

func (s *RateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if item, found := s.cache.Get(key); found {
		entry := item.(windowEntry)

		if now.Before(entry.ResetTime) {
			entry.Count++
			s.cache.Set(key, entry, entry.ResetTime.Sub(now))

			return entry.Count, entry.ResetTime, nil
		}
	}

	entry := windowEntry{
		Count:     1,
		ResetTime: now.Add(window),
	}
	s.cache.Set(key, entry, window)

	return entry.Count, entry.ResetTime, nil
}

func (s *RateLimitStore) Close() error {
	s.cache.Flush()
	return nil
}
