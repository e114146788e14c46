package chat

import (
	"sync"

	"golang.org/x/time/rate"
)

// commandsPerSecond and commandBurst bound how fast a single sender's
// handle may push commands through the router before they are dropped
// (§11.3 of SPEC_FULL.md): generalizes the teacher's per-IP
// golang.org/x/time/rate limiter (hzchat/internal/pkg/limiter) to the
// control-mailbox boundary, since there is no HTTP request to key on here.
const (
	commandsPerSecond = 20
	commandBurst       = 40
)

// senderLimiter tracks one rate.Limiter per sender handle.
type senderLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newSenderLimiter() *senderLimiter {
	return &senderLimiter{limiters: make(map[string]*rate.Limiter)}
}

// Allow reports whether handle may issue a command right now, creating a
// fresh limiter for handles seen for the first time.
func (s *senderLimiter) Allow(handle string) bool {
	s.mu.Lock()
	l, ok := s.limiters[handle]
	if !ok {
		l = rate.NewLimiter(rate.Limit(commandsPerSecond), commandBurst)
		s.limiters[handle] = l
	}
	s.mu.Unlock()

	return l.Allow()
}

// Forget drops the limiter state for handle, called once a client is
// fully removed from the registry so the map does not grow across churn.
func (s *senderLimiter) Forget(handle string) {
	s.mu.Lock()
	delete(s.limiters, handle)
	s.mu.Unlock()
}
