// Package timezone resolves the market time zone that defines a price day.
package timezone

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Default is the zone of the Spanish peninsular market.
const Default = "Europe/Madrid"

// Load returns the named location. An empty name selects Default.
func Load(name string) (*time.Location, error) {
	if name == "" {
		name = Default
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return loc, nil
}

// Clock returns a function reporting the current time in loc.
func Clock(loc *time.Location) func() time.Time {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
