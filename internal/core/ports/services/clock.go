package services

import "time"

// Clock supplies "today" for as-of date defaults. Injectable for tests.
type Clock interface {
	Today() time.Time
}
