package domain

import "time"

// Clock abstracts time for components whose behavior is time-driven
// (undo expiry, circuit breaker cooldowns). Tests substitute a fake.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
