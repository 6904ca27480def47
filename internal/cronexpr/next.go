package cronexpr

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrNotSchedulable is returned by NextRuns for expressions that describe
// fine but fall outside real cron bounds (month 0, minute 75, 5-1, ...).
var ErrNotSchedulable = errors.New("expression is not schedulable")

// NextRuns returns the next n activation times of e strictly after from,
// in from's location.
func NextRuns(e Expression, from time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}
	sched, err := cron.ParseStandard(e.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSchedulable, err)
	}

	out := make([]time.Time, 0, n)
	t := from
	for len(out) < n {
		t = sched.Next(t)
		// robfig gives up after five years and returns the zero time.
		if t.IsZero() {
			break
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no activation within five years", ErrNotSchedulable)
	}
	return out, nil
}
