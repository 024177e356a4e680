package category

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

type suggester interface {
	Suggest(ctx context.Context, name string) (string, error)
}

type BreakerConfig struct {
	TimeInterval time.Duration
	TimeTimeOut  time.Duration
	RepeatNumber uint32
}

// BreakerClient shields the LLM API behind a circuit breaker so a flaky
// provider stops being called for a while instead of slowing every request.
type BreakerClient struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	wrapped suggester
}

func NewBreakerClient(name string, cfg BreakerConfig, wrapped suggester) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.TimeInterval,
		Timeout:     cfg.TimeTimeOut,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.RepeatNumber
		},
	}
	return &BreakerClient{
		name:    name,
		cb:      gobreaker.NewCircuitBreaker(settings),
		wrapped: wrapped,
	}
}

func (b *BreakerClient) Suggest(ctx context.Context, name string) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.wrapped.Suggest(ctx, name)
	})
	if err != nil {
		return "", fmt.Errorf("%s unavailable: %w", b.name, err)
	}
	res, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("%s returned unexpected result", b.name)
	}
	return res, nil
}
