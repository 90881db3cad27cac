package clock

import (
	"time"

	clockport "github.com/campflow/camp-registration-api/internal/ports/out/clock"
)

// System returns a Clock backed by the wall clock, normalized to UTC so stored
// timestamps compare equal across backends.
func System() clockport.Clock { return clockport.Func(utcNow) }

// OrSystem returns clk, or the system clock when clk is nil.
func OrSystem(clk clockport.Clock) clockport.Clock {
	if clk == nil {
		return System()
	}
	return clk
}

func utcNow() time.Time { return time.Now().UTC() }
