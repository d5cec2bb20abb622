package spin

import "time"

// landingWeights are the per-step shares of the landing duration, in percent.
// Step i shows the quote (3-i) positions before the target.
var landingWeights = [...]int64{15, 25, 35, 25}

// LandingStepCount is the number of steps in the landing sequence.
const LandingStepCount = len(landingWeights)

// LandingStep is one deceleration step: show Index, then wait Delay.
type LandingStep struct {
	Index int
	Delay time.Duration
}

// LandingSteps computes the landing sequence for a target at position target
// in a reel of n quotes. Indices are target-3, target-2, target-1 and target,
// each wrapped with a non-negative modulo. Delays are 15%, 25%, 35% and 25%
// of landing; the last step absorbs integer rounding so the delays always sum
// to landing exactly.
func LandingSteps(target, n int, landing time.Duration) []LandingStep {
	if n <= 0 {
		return nil
	}

	steps := make([]LandingStep, LandingStepCount)

	var spent time.Duration

	for i, weight := range landingWeights {
		offset := LandingStepCount - 1 - i

		delay := time.Duration(int64(landing) * weight / 100)
		if i == LandingStepCount-1 {
			delay = landing - spent
		}

		spent += delay
		steps[i] = LandingStep{
			Index: wrap(target-offset, n),
			Delay: delay,
		}
	}

	return steps
}

// wrap returns i mod n in the range [0, n).
func wrap(i, n int) int {
	return ((i % n) + n) % n
}
