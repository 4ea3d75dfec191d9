package browser

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/utils"
)

// simulateHumanBehavior moves the pointer around and occasionally scrolls before an interaction.
func (s *Session) simulateHumanBehavior(ctx context.Context, page *rod.Page) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "simulateHumanBehavior panic recovered: %v", r)
		}
	}()

	eval, err := page.Eval(`() => ({width: window.innerWidth, height: window.innerHeight})`)
	if err != nil {
		return
	}

	dims := eval.Value.Map()
	maxX := int(dims["width"].Num())
	maxY := int(dims["height"].Num())

	if maxX <= 0 || maxY <= 0 {
		return
	}

	for range mouseMovements {
		point := proto.Point{
			//nolint:gosec // Weak random is fine for simulating human behavior.
			X: float64(rand.IntN(maxX)),
			//nolint:gosec // Weak random is fine for simulating human behavior.
			Y: float64(rand.IntN(maxY)),
		}

		if err = page.Mouse.MoveLinear(point, mouseMovementSteps); err != nil {
			return
		}

		pause(ctx, utils.RandomDuration(mouseMovementMinDelay, mouseMovementMaxDelay))
	}

	//nolint:gosec // Weak random is fine for simulating human behavior.
	if rand.IntN(scrollProbability) == 0 {
		//nolint:gosec // Weak random is fine for simulating human behavior.
		_ = page.Mouse.Scroll(0, float64(rand.IntN(scrollMaxAmount)+scrollMinAmount), 1)
	}

	pause(ctx, utils.RandomDuration(inputMinDelay, inputMaxDelay))
}

// pause sleeps for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
