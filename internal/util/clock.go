package util

import "time"

// SystemClock : реальное время в UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
