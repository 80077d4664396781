package production

import "time"

// Unit is one completed item reported against a leased station.
// ID makes the report idempotent: the store records a given ID at most once.
type Unit struct {
	ID         string
	StationID  int
	ProcessID  string
	WorkerType WorkerType
	BuildTime  time.Duration
	ProducedAt time.Time
}
