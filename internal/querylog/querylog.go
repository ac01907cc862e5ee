// Package querylog implements the reservoir-sampled query logger activated
// by the POINT_CLOUD_CLIENT_QUERY_LOGFILE environment variable.
//
// Grounded on original_source/point_cloud_client/src/logging.rs: a
// process-wide, mutex-guarded reservoir of up to capacity entries, flushed
// to disk as a JSON array. A global singleton (rather than a field on the
// public store type) means multiple store instances sharing one process
// don't race writing the same logfile, matching the Rust original's own
// reasoning for using a single lazy_static mutex instead of per-instance
// state.
package querylog

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
)

// EnvVar names the environment variable that activates query logging.
const EnvVar = "POINT_CLOUD_CLIENT_QUERY_LOGFILE"

// Capacity is the reservoir's fixed size.
const Capacity = 1000

var (
	initOnce sync.Once
	global   *Logger
)

// Logger accumulates logged queries in a fixed-capacity reservoir sample
// and writes them to a JSON file when Flush is called. Nothing in this
// module calls Flush automatically at shutdown.
type Logger struct {
	mu      sync.Mutex
	logfile string
	entries []json.RawMessage
	seen    int
	rng     *rand.Rand
}

// newLogger records path for later writing, refusing one whose parent
// directory doesn't exist (matching the Rust original's guard).
func newLogger(path string) *Logger {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil
	}
	return &Logger{
		logfile: path,
		entries: make([]json.RawMessage, 0, Capacity),
		rng:     rand.New(rand.NewSource(1)),
	}
}

// Global returns the process-wide Logger activated by EnvVar, or nil if the
// variable isn't set or its directory doesn't exist. Safe to call from
// multiple goroutines; initialization happens exactly once.
func Global() *Logger {
	initOnce.Do(func() {
		path := os.Getenv(EnvVar)
		if path == "" {
			return
		}
		global = newLogger(path)
	})
	return global
}

// Log records query, marshaled to JSON, via reservoir sampling: once the
// reservoir is at Capacity, each new entry replaces a uniformly random
// existing one with probability Capacity/seen. A nil Logger (the common
// case when logging isn't activated) makes this a no-op.
func (l *Logger) Log(query any) {
	if l == nil {
		return
	}
	value, err := json.Marshal(query)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) < Capacity {
		l.entries = append(l.entries, value)
	} else {
		j := l.rng.Intn(l.seen + 1)
		if j < Capacity {
			l.entries[j] = value
		}
	}
	l.seen++
}

// Flush writes the current reservoir to the logfile as a JSON array,
// truncating any previous content. Errors are deliberately swallowed: a
// failure to write the debug query log must never fail the operation being
// logged.
func (l *Logger) Flush() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Create(l.logfile)
	if err != nil {
		return
	}
	defer f.Close()
	_ = json.NewEncoder(f).Encode(l.entries)
}

// reset clears global state so tests can re-activate logging with a
// different environment. Not exported: production code never needs to
// reinitialize the singleton mid-process.
func reset() {
	initOnce = sync.Once{}
	global = nil
}
