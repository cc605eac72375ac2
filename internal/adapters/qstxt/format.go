// Package qstxt reads and writes light table text files. Raw instrument files
// have no header and 44 numeric fields per line, separated by whitespace or commas
package qstxt

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"qsmerge/internal/core/table"
	perr "qsmerge/internal/platform/errors"
)

// maxLine bounds a single text line
const maxLine = 64 * 1024

// Read parses a headerless table. Blank lines are skipped; empty, nan and
// null tokens are missing values
func Read(r io.Reader) (*table.Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLine)

	var rows []table.Row
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		row, err := parseRow(fields(text))
		if err != nil {
			return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeIO, "line %d", line), "line")
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "read table")
	}
	return table.New(rows), nil
}

// fields splits on commas when present, whitespace otherwise
func fields(s string) []string {
	if !strings.Contains(s, ",") {
		return strings.Fields(s)
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseRow(toks []string) (table.Row, error) {
	var r table.Row
	if len(toks) != table.Width {
		return r, perr.InvalidArgf("want %d fields, got %d", table.Width, len(toks))
	}
	for i, tok := range toks {
		v, err := parseValue(tok)
		if err != nil {
			return r, perr.InvalidArgf("field %q: %v", table.Columns[i], err)
		}
		r[i] = v
	}
	return r, nil
}

func parseValue(tok string) (float64, error) {
	switch strings.ToLower(tok) {
	case "", "nan", "null", "na":
		return table.Null, nil
	}
	return strconv.ParseFloat(tok, 64)
}

func formatValue(v float64) string {
	if table.IsNull(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Write emits t headerless, one space separated row per line. Values round trip through Read
func Write(w io.Writer, t *table.Table) error {
	bw := bufio.NewWriter(w)
	for i := range t.Len() {
		writeRow(bw, t.Rows[i][:], " ")
	}
	if err := bw.Flush(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "write table")
	}
	return nil
}

func writeRow(bw *bufio.Writer, vals []float64, sep string) {
	for c, v := range vals {
		if c > 0 {
			_, _ = bw.WriteString(sep)
		}
		_, _ = bw.WriteString(formatValue(v))
	}
	_ = bw.WriteByte('\n')
}

// PadToNull blanks rows whose fields are all exactly zero, the filler chunk
// files carry outside their valid range. It returns the number of rows changed
func PadToNull(t *table.Table) int {
	n := 0
	for i := range t.Len() {
		r := &t.Rows[i]
		if r.Zero() {
			r.Blank()
			n++
		}
	}
	return n
}
