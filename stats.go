package camstream

import (
	"sync"
	"time"
)

// StreamingStats tracks the lifetime of the current session for external
// observers. Owned by the session, reset when the session stops.
type StreamingStats struct {
	mu      sync.RWMutex
	started time.Time
}

// MarkStarted records the session start timestamp
func (s *StreamingStats) MarkStarted(t time.Time) {
	s.mu.Lock()
	s.started = t
	s.mu.Unlock()
}

// Elapsed returns the duration since the session started, zero when no
// session is running
func (s *StreamingStats) Elapsed() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// StartedAt returns the session start timestamp and whether one is set
func (s *StreamingStats) StartedAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started, !s.started.IsZero()
}

// Reset puts the stats back to the absent state
func (s *StreamingStats) Reset() {
	s.mu.Lock()
	s.started = time.Time{}
	s.mu.Unlock()
}
