// Package modkit wires API modules: the deps main hands them, construction options
// and the Module contract re-exported from modkit/module
package modkit

import "qsmerge/internal/modkit/module"

type Module = module.Module

// Builder is the shape of every module constructor
type Builder func(Deps, ...Option) Module
