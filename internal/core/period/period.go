// Package period identifies measurement periods and classifies their raw sources
package period

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	perr "qsmerge/internal/platform/errors"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// windowRe matches the time window, tolerating a directory prefix like "results-t00-t20"
var windowRe = regexp.MustCompile(`t(\d+)-t(\d+)$`)

// Key identifies one period, e.g. 1A/rising-62L/t40-t60
type Key struct {
	Experiment string
	Step       string
	Window     string
}

// ParseKey reads a key from the last three components of a slash separated path
func ParseKey(p string) (Key, error) {
	p = canon(p)
	p = strings.Trim(strings.ReplaceAll(p, `\`, "/"), "/")
	parts := strings.Split(path.Clean(p), "/")
	if len(parts) < 3 {
		return Key{}, perr.InvalidArgf("period key %q: want experiment/step/window", p)
	}
	parts = parts[len(parts)-3:]
	w := windowRe.FindStringSubmatch(parts[2])
	if w == nil {
		return Key{}, perr.InvalidArgf("period key %q: bad window %q", p, parts[2])
	}
	k := Key{Experiment: parts[0], Step: parts[1], Window: "t" + w[1] + "-t" + w[2]}
	if k.Experiment == "" || k.Step == "" {
		return Key{}, perr.InvalidArgf("period key %q: empty component", p)
	}
	return k, nil
}

// MustParseKey is ParseKey for literals
func MustParseKey(p string) Key {
	k, err := ParseKey(p)
	if err != nil {
		panic(err)
	}
	return k
}

// canon folds full width characters and normalizes to NFC so keys typed on
// different hosts compare equal
func canon(s string) string {
	return norm.NFC.String(width.Fold.String(strings.TrimSpace(s)))
}

// String returns the slash form
func (k Key) String() string { return k.Experiment + "/" + k.Step + "/" + k.Window }

// Name returns the output name, e.g. Qs_1A_rising-62L_t40-t60
func (k Key) Name() string { return strings.Join([]string{"Qs", k.Experiment, k.Step, k.Window}, "_") }

// Bounds returns the window start and end in minutes
func (k Key) Bounds() (start, end int, err error) {
	w := windowRe.FindStringSubmatch(k.Window)
	if w == nil {
		return 0, 0, perr.InvalidArgf("period %s: bad window %q", k, k.Window)
	}
	start, _ = strconv.Atoi(w[1])
	end, _ = strconv.Atoi(w[2])
	return start, end, nil
}

// Duration returns the nominal row count, one row per second of the window
func (k Key) Duration() (int, error) {
	s, e, err := k.Bounds()
	if err != nil {
		return 0, err
	}
	d := e - s
	if d < 0 {
		d = -d
	}
	return d * 60, nil
}

// Less orders keys by experiment, step, then window
func (k Key) Less(o Key) bool {
	if k.Experiment != o.Experiment {
		return k.Experiment < o.Experiment
	}
	if k.Step != o.Step {
		return k.Step < o.Step
	}
	return k.Window < o.Window
}

// MarshalText implements encoding.TextMarshaler
func (k Key) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Key) UnmarshalText(b []byte) error {
	v, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
