package pipeline

import (
	"context"
	"sync"

	"github.com/fwojciec/digest"
	"golang.org/x/time/rate"
)

// Ensure HostRateLimiter implements digest.HostLimiter at compile time.
var _ digest.HostLimiter = (*HostRateLimiter)(nil)

// HostRateLimiter enforces a per-host request rate so that a batch hitting
// many articles on one domain stays polite.
type HostRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewHostRateLimiter creates a limiter allowing rps requests per second
// per host, with the given burst.
func NewHostRateLimiter(rps float64, burst int) *HostRateLimiter {
	return &HostRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Wait blocks until the host's limiter admits a request or the context is
// canceled.
func (l *HostRateLimiter) Wait(ctx context.Context, host string) error {
	return l.limiter(host).Wait(ctx)
}

func (l *HostRateLimiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[host] = limiter
	}
	return limiter
}
