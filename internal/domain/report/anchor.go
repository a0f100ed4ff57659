// internal/domain/report/anchor.go
package report

import (
	"fmt"
	"time"
)

// FirstAnchorOffset is how long after a fast starts that the first report is due.
// The first send is always at the 24-hour mark, regardless of the interval.
const FirstAnchorOffset = 24 * time.Hour

// DefaultIntervalHours is the cadence between sends after the first anchor.
const DefaultIntervalHours = 6

var ErrInvalidStartTime = fmt.Errorf("start time must be a valid instant")
var ErrInvalidInterval = fmt.Errorf("interval hours must be positive")

// ComputeNextSend returns the next due send time for a fast that started at
// startTime, as seen from now. Results always lie on the
// startTime+24h + k*intervalHours lattice and are strictly after now: an anchor
// exactly equal to now counts as already consumed and the following one is returned.
func ComputeNextSend(startTime, now time.Time, intervalHours int) (time.Time, error) {
	if startTime.IsZero() {
		return time.Time{}, ErrInvalidStartTime
	}
	if intervalHours <= 0 {
		return time.Time{}, ErrInvalidInterval
	}

	firstAnchor := startTime.Add(FirstAnchorOffset)
	if now.Before(firstAnchor) {
		return firstAnchor, nil
	}

	interval := time.Duration(intervalHours) * time.Hour
	periodsPassed := now.Sub(firstAnchor) / interval // integer floor
	return firstAnchor.Add((periodsPassed + 1) * interval), nil
}
