package pg

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"qsmerge/internal/platform/logger"

	"github.com/rs/zerolog"
)

// maxLoggedElems is the longest slice argument logged in full. Table saves
// bind rows*44 values in one array
const maxLoggedElems = 16

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement the store runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every statement through root, at debug level regardless of the
// process level, with the run and period of ctx attached
func Tracer(root logger.Logger) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	log := logger.Enrich(ctx, z.log)
	evt := log.Info()
	if ev.Slow {
		evt = log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", loggableArgs(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// compact folds all whitespace runs of a statement to single spaces
func compact(s string) string { return strings.Join(strings.Fields(s), " ") }

// loggableArgs replaces long slice arguments with their type and length
func loggableArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
		if a == nil {
			continue
		}
		v := reflect.ValueOf(a)
		if (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && v.Len() > maxLoggedElems {
			out[i] = fmt.Sprintf("%s(len=%d)", v.Type(), v.Len())
		}
	}
	return out
}
