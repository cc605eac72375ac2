// Package testkit holds the assertions and seam helpers shared by package tests
package testkit

import (
	"strings"
	"sync"
	"testing"
)

// maxShown bounds how much of a haystack a failed MustContain prints
const maxShown = 2048

// MustPanic fails t unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain fails t unless haystack contains needle. Long haystacks,
// such as log output or rendered tables, are cut to their first 2 KiB
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	shown := haystack
	if len(shown) > maxShown {
		shown = shown[:maxShown] + "..."
	}
	t.Fatalf("expected %q in:\n%s", needle, shown)
}

var seamMu sync.Mutex

// Swap replaces a package level seam for the rest of the test
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds a process wide lock until the test ends. Tests that Swap a
// seam other tests read call it first
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(seamMu.Unlock)
}
