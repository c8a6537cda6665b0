package progress

import (
	"context"
	"time"

	"github.com/spigell/resume-matcher/internal/utils"
)

// Scheduler runs callbacks later. Returned functions cancel the task; calling them twice is safe.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
	After(delay time.Duration, fn func()) (cancel func())
}

type realScheduler struct{}

// NewScheduler returns a Scheduler backed by the runtime timers.
func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) Every(interval time.Duration, fn func()) func() {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// cancel may race with a tick that is already due
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()

	return cancel
}

func (realScheduler) After(delay time.Duration, fn func()) func() {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := utils.WaitFor(ctx, delay); err != nil {
			return
		}
		fn()
	}()

	return cancel
}
