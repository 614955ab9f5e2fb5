// Package prof collects coarse wall-clock timings for the expensive phases
// of signing and verification. Callers record with
//
//	defer prof.Track(time.Now(), "commitPhase")
//
// and drain the log with SnapshotAndReset. Recording is cheap enough to
// leave enabled; each tracked phase runs many isogeny walks.
package prof

import (
	"sync"
	"time"
)

// Entry is a single timing measurement.
type Entry struct {
	Label string
	Dur   time.Duration
}

var (
	mu     sync.Mutex
	record []Entry
)

// Track logs the duration since start under the given label.
func Track(start time.Time, label string) {
	elapsed := time.Since(start)
	mu.Lock()
	record = append(record, Entry{Label: label, Dur: elapsed})
	mu.Unlock()
}

// SnapshotAndReset returns the collected entries and clears the log.
func SnapshotAndReset() []Entry {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Entry, len(record))
	copy(out, record)
	record = nil
	return out
}
