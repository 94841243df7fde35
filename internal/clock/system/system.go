// Package system provides the wall clock used outside tests.
package system

import (
	"time"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

// Clock implements lead.Clock in UTC.
type Clock struct{}

var _ lead.Clock = Clock{}

// New creates a Clock.
func New() Clock {
	return Clock{}
}

// Now returns the current UTC time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
