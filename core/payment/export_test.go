package payment

import "time"

// SetNowFunc pins the package clock for tests and returns a restore func.
func SetNowFunc(f func() time.Time) func() {
	prev := nowFunc
	nowFunc = f
	return func() { nowFunc = prev }
}
