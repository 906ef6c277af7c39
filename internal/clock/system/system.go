// Package system provides the wall clock used to time scrape runs.
package system

import "time"

// Clock implements scraper.Clock on top of the process clock.
type Clock struct{}

// New creates a Clock.
func New() Clock {
	return Clock{}
}

// Now returns the current time in UTC. The monotonic reading is kept so
// durations between two calls are immune to wall clock jumps.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
