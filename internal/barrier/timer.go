package barrier

import "time"

// Timer is a monotonic stopwatch, the Go analogue of ttimer_t. It wraps
// time.Now()/time.Since rather than CLOCK_MONOTONIC_RAW directly, since
// Go's monotonic clock reading is already carried on time.Time values.
type Timer struct {
	checkpoint time.Time
	elapsed    time.Duration
}

// Start resets the timer's checkpoint.
func (t *Timer) Start() { t.checkpoint = time.Now() }

// Stop records the elapsed duration since Start.
func (t *Timer) Stop() { t.elapsed = time.Since(t.checkpoint) }

// ElapsedSec reports the last Stop-ped interval in seconds.
func (t *Timer) ElapsedSec() float64 { return t.elapsed.Seconds() }
