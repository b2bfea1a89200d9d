package services

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"ttx/internal/models"
)

// Pacer enforces the per-tool inter-request delay. Each tool gets its own
// [rate.Limiter] whose rate is one event per configured delay, which is
// exactly "every call is followed by the delay before the next call to the
// same tool begins". Pacing is independent of 429 retry: the delay avoids
// hitting limits in the common case, retry recovers when it is not enough.
type Pacer struct {
	limiters map[models.ToolName]*rate.Limiter
}

// NewPacer builds a Pacer from the injected delay lookup. A zero delay
// (local/dev API) disables pacing for that tool.
func NewPacer(delay func(models.ToolName) time.Duration) *Pacer {
	limiters := make(map[models.ToolName]*rate.Limiter)
	for _, tool := range []models.ToolName{models.ToolToggl, models.ToolClockify} {
		d := delay(tool)
		if d <= 0 {
			limiters[tool] = rate.NewLimiter(rate.Inf, 1)
			continue
		}
		limiters[tool] = rate.NewLimiter(rate.Every(d), 1)
	}
	return &Pacer{limiters: limiters}
}

// Wait blocks until the next request to the tool may begin, or until the
// context is cancelled. The wait is cooperative, not a blocking sleep.
func (p *Pacer) Wait(ctx context.Context, tool models.ToolName) error {
	limiter, ok := p.limiters[tool]
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
