// Package ratelimit wraps a generator.Generator with a client-side token
// bucket so concurrent questions cannot exceed the provider's request budget.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/w-h-a/factfinder/generator"
)

type rateLimitedGenerator struct {
	next    generator.Generator
	limiter *rate.Limiter
}

func (g *rateLimitedGenerator) Chat(ctx context.Context, messages []generator.Message, opts ...generator.ChatOption) (generator.Reply, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return generator.Reply{}, err
	}
	return g.next.Chat(ctx, messages, opts...)
}

// NewGenerator limits next to requestsPerSecond with the given burst. A
// non-positive rate disables limiting and returns next unchanged.
func NewGenerator(next generator.Generator, requestsPerSecond float64, burst int) generator.Generator {
	if next == nil {
		panic("generator is required")
	}

	if requestsPerSecond <= 0 {
		return next
	}

	if burst <= 0 {
		burst = 1
	}

	return &rateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}
