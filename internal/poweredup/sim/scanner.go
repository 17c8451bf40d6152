package sim

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/half-shot/matrix-poweredup/internal/poweredup"
)

// Scanner advertises a fixed set of hubs.
type Scanner struct {
	hubs  []poweredup.Hub
	delay time.Duration
	clock clock.Clock
}

var _ poweredup.Scanner = (*Scanner)(nil)

// NewScanner returns a Scanner that finds hubs in order. With no hubs the
// scan never finds anything.
func NewScanner(hubs ...poweredup.Hub) *Scanner {
	return &Scanner{hubs: hubs, clock: clock.New()}
}

// WithDelay postpones each advertisement by d on clk.
func (s *Scanner) WithDelay(clk clock.Clock, d time.Duration) *Scanner {
	s.clock, s.delay = clk, d
	return s
}

func (s *Scanner) Scan(ctx context.Context) (<-chan poweredup.Hub, error) {
	ch := make(chan poweredup.Hub)
	go func() {
		defer close(ch)
		for _, h := range s.hubs {
			if err := poweredup.SleepContext(ctx, s.clock, s.delay); err != nil {
				return
			}
			select {
			case ch <- h:
			case <-ctx.Done():
				return
			}
		}
		<-ctx.Done()
	}()
	return ch, nil
}
