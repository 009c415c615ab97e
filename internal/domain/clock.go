package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps flight views. Tests and fixture generators freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the view clock. nil restores wall time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// builtAt is the UTC instant recorded on a new view.
func builtAt() time.Time {
	return clock.Now().UTC()
}
