package testutil

import (
	"bytes"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"
)

// NewTestRNG creates a deterministic random number generator for tests
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// BufferLogger returns a debug-level JSON logger writing into the returned buffer
func BufferLogger() (zerolog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return zerolog.New(buf).Level(zerolog.DebugLevel), buf
}

// CountLines returns how many log lines in buf contain every given fragment
func CountLines(buf *bytes.Buffer, fragments ...string) int {
	count := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		if line == "" {
			continue
		}
		match := true
		for _, f := range fragments {
			if !strings.Contains(line, f) {
				match = false
				break
			}
		}
		if match {
			count++
		}
	}
	return count
}
