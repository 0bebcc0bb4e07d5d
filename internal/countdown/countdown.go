// Package countdown derives the time left on an auction for display.
package countdown

import (
	"context"
	"fmt"
	"time"
)

// EndedLabel is shown once an auction's end date has passed
const EndedLabel = "Auction Ended"

// Remaining is the time left until an auction ends, split into display units
type Remaining struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Ended   bool `json:"ended"`
}

// Until decomposes end - now. A difference of zero or less is Ended.
func Until(end, now time.Time) Remaining {
	diff := end.Sub(now)
	if diff <= 0 {
		return Remaining{Ended: true}
	}

	total := int64(diff / time.Second)
	return Remaining{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
	}
}

// String formats as "{d}d {h}h" when at least a day is left, otherwise HH:MM:SS
func (r Remaining) String() string {
	switch {
	case r.Ended:
		return EndedLabel
	case r.Days > 0:
		return fmt.Sprintf("%dd %dh", r.Days, r.Hours)
	default:
		return fmt.Sprintf("%02d:%02d:%02d", r.Hours, r.Minutes, r.Seconds)
	}
}

// Watch emits the remaining time immediately and then on every tick of interval.
// The channel is closed after the Ended value is sent or when ctx is done.
func Watch(ctx context.Context, end time.Time, interval time.Duration, now func() time.Time) <-chan Remaining {
	out := make(chan Remaining, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			r := Until(end, now())
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
			if r.Ended {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
