package ws

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limit is an admission budget for one inbound event type.
type Limit struct {
	RPS   float64
	Burst int
}

// Limits maps event names to their admission budgets. Events without an
// entry fall back to the defaults.
type Limits map[string]Limit

// DefaultLimits matches typical two-party chat cadence: joins are rare,
// sends are bursty but bounded.
func DefaultLimits() Limits {
	return Limits{
		"join":         {RPS: 1, Burst: 3},
		"send_message": {RPS: 2, Burst: 5},
	}
}

// limiterPool hands out one rate.Limiter per event type. Each connection
// owns its own pool, so budgets are per connection per event type.
type limiterPool struct {
	mu     sync.Mutex
	m      map[string]*rate.Limiter
	limits Limits
}

func newLimiterPool(limits Limits) *limiterPool {
	return &limiterPool{limits: limits}
}

func (p *limiterPool) get(event string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]*rate.Limiter)
	}
	if l, ok := p.m[event]; ok {
		return l
	}
	cfg := p.limits[event]
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	l := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
	p.m[event] = l
	return l
}

// Allow reports whether one more event of this type may be admitted now.
func (p *limiterPool) Allow(event string) bool {
	return p.get(event).Allow()
}
