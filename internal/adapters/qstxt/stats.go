package qstxt

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/table"
	perr "qsmerge/internal/platform/errors"
)

// StatsName is the file the stats report is written to
const StatsName = "Qs_summary_stats.txt"

// StatsFile is a domain.StatsStore kept as one tab separated text report with a header
type StatsFile struct {
	path string
}

// NewStatsFile returns a stats report at dir/Qs_summary_stats.txt
func NewStatsFile(dir string) *StatsFile {
	return &StatsFile{path: filepath.Join(dir, StatsName)}
}

// Path returns the report location
func (f *StatsFile) Path() string { return f.path }

// LoadStats reads the report; a missing file is an empty report
func (f *StatsFile) LoadStats(context.Context) (reconcile.Stats, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return reconcile.Stats{}, nil
		}
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "qstxt: read "+f.path)
	}
	return ReadStats(bytes.NewReader(b))
}

// SaveStats merges the named rows into the report and rewrites it
func (f *StatsFile) SaveStats(ctx context.Context, s reconcile.Stats, keys []reconcile.StatKey) error {
	cur, err := f.LoadStats(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if row, ok := s[k]; ok {
			cur[k] = row
		}
	}
	var buf bytes.Buffer
	if err := WriteStats(&buf, cur); err != nil {
		return err
	}
	return writeFileAtomic(f.path, buf.Bytes())
}

// WriteStats emits the header then one row per stat key in report order
func WriteStats(w io.Writer, s reconcile.Stats) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString("period\tkind\t" + strings.Join(table.Columns[:], "\t") + "\n")
	for _, k := range s.Keys() {
		row := s[k]
		_, _ = bw.WriteString(k.Period.Name() + "\t" + string(k.Kind) + "\t")
		writeRow(bw, row[:], "\t")
	}
	if err := bw.Flush(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "write stats")
	}
	return nil
}

// ReadStats parses a report written by WriteStats
func ReadStats(r io.Reader) (reconcile.Stats, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLine)
	out := reconcile.Stats{}
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if line == 1 || strings.TrimSpace(text) == "" {
			continue
		}
		toks := strings.Split(text, "\t")
		if len(toks) != table.Width+2 {
			return nil, perr.Newf(perr.ErrorCodeIO, "stats line %d: want %d fields, got %d", line, table.Width+2, len(toks))
		}
		k, err := keyFromName(toks[0])
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeIO, "stats line %d", line)
		}
		row, err := parseRow(toks[2:])
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeIO, "stats line %d", line)
		}
		out[reconcile.StatKey{Period: k, Kind: reconcile.StatKind(toks[1])}] = row
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "read stats")
	}
	return out, nil
}

// keyFromName reverses period.Key.Name, e.g. Qs_1A_rising-62L_t40-t60
func keyFromName(name string) (period.Key, error) {
	parts := strings.Split(name, "_")
	if len(parts) != 4 || parts[0] != "Qs" {
		return period.Key{}, perr.InvalidArgf("bad period name %q", name)
	}
	return period.ParseKey(strings.Join(parts[1:], "/"))
}
