package clock

import "time"

// Clock provides the current time for registration dates, audit timestamps and
// idempotency expiry.
type Clock interface {
	Now() time.Time
}

// Func adapts an ordinary function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }
