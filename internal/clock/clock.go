// Package clock abstracts time so window-based logic can be tested with a
// fake clock.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}
