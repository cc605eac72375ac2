// Package raw reads the LOG_* bootstrap settings. It must not import the
// logger, which is built from it
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a prefixed environment view without any logging on bad values
type Conf struct{ prefix string }

// New returns the unprefixed view
func New() Conf { return Conf{} }

// Prefix narrows the view, e.g. Prefix("LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) env(k string) string { return strings.TrimSpace(os.Getenv(c.prefix + k)) }

// Get returns the trimmed value of key, or def when unset
func (c Conf) Get(key, def string) string {
	if v := c.env(key); v != "" {
		return v
	}
	return def
}

// GetBool treats 1, true, yes and on as true and anything else set as false
func (c Conf) GetBool(key string, def bool) bool {
	switch strings.ToLower(c.env(key)) {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// GetInt returns key as a non negative int, or def when unset or not one
func (c Conf) GetInt(key string, def int) int {
	n, err := strconv.Atoi(c.env(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}
