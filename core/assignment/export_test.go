package assignment

import "time"

// SetNowFunc pins the service clock and returns a restore func.
func SetNowFunc(f func() time.Time) func() {
	old := nowFunc
	nowFunc = f
	return func() { nowFunc = old }
}
