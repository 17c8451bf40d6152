package buggy

import (
	"context"
	"time"

	"github.com/half-shot/matrix-poweredup/pkg/log"
)

const (
	demoSteerStep  = 2
	demoSteerSteps = 15
	demoPause      = 500 * time.Millisecond
)

// RunDemo exercises the buggy: centre the steering, ramp the drive motor up,
// sweep the steering right then back left, and stop.
func RunDemo(ctx context.Context, b *Buggy) error {
	if err := b.Reset(ctx); err != nil {
		return err
	}

	for speed := 0; speed < 100; speed += 5 {
		if err := b.Drive(ctx, Forward, speed, 0); err != nil {
			return err
		}
	}

	log.Info("Steering right")
	if err := sweep(ctx, b, Right); err != nil {
		return err
	}
	log.Info("Steering left")
	if err := sweep(ctx, b, Left); err != nil {
		return err
	}

	return b.SetSpeed(context.WithoutCancel(ctx), 0)
}

func sweep(ctx context.Context, b *Buggy, dir SteerDirection) error {
	for i := 1; i <= demoSteerSteps; i++ {
		if err := b.Steer(ctx, dir, demoSteerStep); err != nil {
			return err
		}
		if err := b.Sleep(ctx, demoPause); err != nil {
			return err
		}
		log.Debug("Steered", "direction", dir, "angle", b.Angle())
	}
	return nil
}
