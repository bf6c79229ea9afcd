package timeutil

import (
	"sync/atomic"
	"time"
)

// nowFn is swappable so tests can pin the clock.
var nowFn atomic.Pointer[func() time.Time]

func init() {
	f := time.Now
	nowFn.Store(&f)
}

func Now() time.Time {
	return (*nowFn.Load())()
}

// NowMillis returns the current wall clock in unix milliseconds, the
// resolution used by record timestamps and the timestamp index.
func NowMillis() int64 {
	return Now().UnixMilli()
}

// SetNow overrides the clock. Returns a restore func.
func SetNow(f func() time.Time) func() {
	prev := nowFn.Swap(&f)
	return func() { nowFn.Store(prev) }
}
