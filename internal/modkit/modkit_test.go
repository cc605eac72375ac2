package modkit

import (
	"testing"

	phttp "qsmerge/internal/platform/net/http"
)

// stub module that satisfies Module and records calls
type stub struct {
	mounted bool
	ports   any
}

func (s *stub) MountRoutes(_ phttp.Router) { s.mounted = true }
func (s *stub) Ports() any                 { return s.ports }
func (s *stub) Name() string               { return "stub" }

var _ Module = (*stub)(nil)

func TestBuilder_TypeSignatureAndUse(t *testing.T) {
	t.Parallel()

	var b Builder = func(_ Deps, opts ...Option) Module {
		built := Build("stub", "/stub", opts...)
		return &stub{ports: built.Ports}
	}

	m := b(Deps{}, WithPorts("ok"))
	m.MountRoutes(nil)
	if !m.(*stub).mounted {
		t.Fatal("expected MountRoutes to be called")
	}
	if p := m.Ports(); p != "ok" {
		t.Fatalf("unexpected Ports value from built module: got=%v want=ok", p)
	}
}
