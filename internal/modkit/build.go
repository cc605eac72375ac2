package modkit

import "net/http"

// Option overrides part of a module's defaults at construction
type Option func(*Built)

// WithName renames a module; the name shows up in logs
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix mounts a module somewhere other than its default path
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends per module middleware, outermost first
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts hands a module the ports another module exported
func WithPorts(p any) Option { return func(b *Built) { b.Ports = p } }

// Built is a module's resolved name, prefix, middleware and injected ports
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Build starts from the module's default name and prefix and applies opts in order.
// Mw never aliases a slice the caller passed in
func Build(name, prefix string, opts ...Option) Built {
	b := Built{Name: name, Prefix: prefix}
	for _, o := range opts {
		o(&b)
	}
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	return b
}
