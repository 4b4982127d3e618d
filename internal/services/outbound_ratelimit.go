package services

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// OutboundLimiter implements two-tier rate limiting for collaborator
// requests: a global ceiling for the process and a politeness limit per
// upstream host.
type OutboundLimiter struct {
	globalLimiter   *rate.Limiter
	perHostLimiters *sync.Map // map[string]*rate.Limiter
}

// NewOutboundLimiter creates a new two-tier rate limiter
func NewOutboundLimiter(globalRate float64) *OutboundLimiter {
	return &OutboundLimiter{
		globalLimiter:   rate.NewLimiter(rate.Limit(globalRate), int(globalRate*2)),
		perHostLimiters: &sync.Map{},
	}
}

// Wait applies both tiers of rate limiting
func (rl *OutboundLimiter) Wait(ctx context.Context, host string) error {
	if err := rl.globalLimiter.Wait(ctx); err != nil {
		return err
	}

	hostLimiter := rl.getOrCreateHostLimiter(host)
	return hostLimiter.Wait(ctx)
}

// getOrCreateHostLimiter gets or creates a rate limiter for a host (2 req/s)
func (rl *OutboundLimiter) getOrCreateHostLimiter(host string) *rate.Limiter {
	if limiter, ok := rl.perHostLimiters.Load(host); ok {
		return limiter.(*rate.Limiter)
	}

	newLimiter := rate.NewLimiter(rate.Limit(2.0), 4)

	// Try to store, but use existing if another goroutine created it first
	actual, _ := rl.perHostLimiters.LoadOrStore(host, newLimiter)
	return actual.(*rate.Limiter)
}

// sharedOutbound is the limiter every collaborator request goes through.
var sharedOutbound = NewOutboundLimiter(10)

// WaitOutbound applies the shared collaborator limiter for a host.
func WaitOutbound(ctx context.Context, host string) error {
	return sharedOutbound.Wait(ctx, host)
}
