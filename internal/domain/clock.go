package domain

import "time"

// DefaultTimezone is the civil zone the feed publishes leaveDate in.
const DefaultTimezone = "Asia/Tokyo"

// LoadLocation resolves name. When the zone database cannot resolve it, UTC is
// returned with ok=false and feed timestamps are read as if already in UTC.
func LoadLocation(name string) (*time.Location, bool) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}
