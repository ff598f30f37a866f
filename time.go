package s3fs

import (
	"sync"
	"time"
)

// TimeSource is the clock that stamps objects written to the local backends
// and times walks.
type TimeSource interface {
	Now() time.Time
	Since(time.Time) time.Duration
}

// TimeSourceAdvancer is a TimeSource that only moves when told to.
type TimeSourceAdvancer interface {
	TimeSource
	Advance(by time.Duration)
}

// DefaultTimeSource reads the wall clock in UTC, the zone S3 reports
// LastModified in.
func DefaultTimeSource() TimeSource { return wallClock{} }

type wallClock struct{}

func (wallClock) Now() time.Time                  { return time.Now().UTC() }
func (wallClock) Since(t time.Time) time.Duration { return time.Since(t) }

// FixedTimeSource stands still at 'at' until it is advanced. It may be
// shared between goroutines.
func FixedTimeSource(at time.Time) TimeSourceAdvancer {
	return &stoppedClock{at: at}
}

type stoppedClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *stoppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *stoppedClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *stoppedClock) Advance(by time.Duration) {
	c.mu.Lock()
	c.at = c.at.Add(by)
	c.mu.Unlock()
}
