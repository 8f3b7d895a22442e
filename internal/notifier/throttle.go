package notifier

import (
	"context"
	"fmt"

	"github.com/diegoclair/checkin-scheduler/internal/domain/contract"
	"golang.org/x/time/rate"
)

// Throttled limits Send calls of the wrapped notifier to a token bucket of
// ratePerSec tokens per second.
type Throttled struct {
	next    contract.Notifier
	limiter *rate.Limiter
}

func NewThrottled(next contract.Notifier, ratePerSec int) *Throttled {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

func (t *Throttled) Name() string { return t.next.Name() }

func (t *Throttled) Ready() bool { return t.next.Ready() }

func (t *Throttled) Init(ctx context.Context) error { return t.next.Init(ctx) }

func (t *Throttled) Send(ctx context.Context, recipientID, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return t.next.Send(ctx, recipientID, text)
}
