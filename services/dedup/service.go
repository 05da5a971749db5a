package dedup

import (
	"sync"
	"time"

	"github.com/statflow/listrelay/config"
	"github.com/statflow/listrelay/interfaces"
)

// dedupService is the only shared mutable state in the process. The
// map is guarded so concurrent duplicates cannot both pass the check,
// and a cron-driven sweep keeps it from growing without bound over
// long uptime. It is intentionally not shared across instances.
type dedupService struct {
	mu       sync.Mutex
	window   time.Duration
	lastSeen map[string]time.Time
}

func NewDedupService(cfg *config.DedupConfig) interfaces.DedupService {
	window := time.Duration(cfg.WindowSeconds) * time.Second
	if window <= 0 {
		window = 30 * time.Second
	}
	return &dedupService{
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

// ShouldProcess records now for identityKey as part of allowing it, so
// a burst of near-simultaneous duplicates is still suppressed.
func (s *dedupService) ShouldProcess(identityKey string, now time.Time) bool {
	if identityKey == "" {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seen, ok := s.lastSeen[identityKey]; ok && now.Sub(seen) < s.window {
		return false
	}
	s.lastSeen[identityKey] = now
	return true
}

func (s *dedupService) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, seen := range s.lastSeen {
		if now.Sub(seen) >= s.window {
			delete(s.lastSeen, key)
			removed++
		}
	}
	return removed
}

func (s *dedupService) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastSeen)
}
