// Package timex holds the time helpers shared by services and tools.
package timex

import "time"

// NowMs returns Unix milliseconds, the timestamp unit of every bus payload.
func NowMs() int64 { return time.Now().UnixMilli() }

// Ms converts a millisecond count from a decoded config into a Duration.
func Ms(n uint64) time.Duration { return time.Duration(n) * time.Millisecond }
