package qstxt

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/core/table"
	tt "qsmerge/internal/core/table/tabletest"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/testkit"
)

// line renders one row with sep, nulls as blank tokens
func line(r table.Row, sep string) string {
	toks := make([]string, table.Width)
	for i, v := range r {
		if table.IsNull(v) {
			continue
		}
		toks[i] = formatValue(v)
	}
	return strings.Join(toks, sep)
}

func TestRead_Formats(t *testing.T) {
	t.Parallel()

	want := tt.Series(2, 0.25)
	want.Rows[1][table.ColVel] = table.Null

	cases := map[string]string{
		"whitespace": line(want.Rows[0], "\t ") + "\n\n" +
			strings.Replace(line(want.Rows[1], " "), "  ", " nan ", 1) + "\n",
		"comma": line(want.Rows[0], ",") + "\r\n" + line(want.Rows[1], ", ") + "\r\n",
	}
	for name, body := range cases {
		got, err := Read(strings.NewReader(body))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		tt.Equal(t, got, want)
	}
}

func TestRead_Rejects(t *testing.T) {
	t.Parallel()

	good := line(tt.Filled(0, 1), " ")
	cases := map[string]string{
		"short":  "1 2 3\n",
		"letter": good + "\n" + strings.Replace(good, "1", "x", 1) + "\n",
	}
	for name, body := range cases {
		_, err := Read(strings.NewReader(body))
		if !perr.IsCode(err, perr.ErrorCodeIO) {
			t.Fatalf("%s: err = %v", name, err)
		}
		if e, ok := perr.As(err); !ok || e.Field() != "line" {
			t.Fatalf("%s: want line field, got %v", name, err)
		}
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	t.Parallel()

	in := tt.Series(3, 1.0/3)
	in.Rows[1] = table.NullRow(1)
	in.Rows[2][table.ColD10] = 1e-9

	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := Read(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	tt.Equal(t, out, in)
}

func TestStore_ZeroPadOnlyForChunks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := New(root, WithZeroPadAsNull(true))
	raw := tt.Series(3, 2)
	raw.Rows[0] = tt.Filled(0, 0)

	for _, k := range []string{"p/Qs1.txt", "p/Qs.txt"} {
		if _, err := s.Save(context.Background(), k, raw); err != nil {
			t.Fatalf("save %s: %v", k, err)
		}
	}
	chunk, err := s.Load(context.Background(), "p/Qs1.txt")
	if err != nil {
		t.Fatalf("load chunk: %v", err)
	}
	if chunk.Rows[0].HasData() || chunk.Rows[0].Timestamp() != 0 || !chunk.Rows[1].HasData() {
		t.Fatalf("chunk padding should be null")
	}
	full, err := s.Load(context.Background(), "p/Qs.txt")
	if err != nil {
		t.Fatalf("load full: %v", err)
	}
	tt.Equal(t, full, raw)

	plain, _ := New(root).Load(context.Background(), "p/Qs1.txt")
	tt.Equal(t, plain, raw)
}

func TestPadToNull_InsideValidRange(t *testing.T) {
	t.Parallel()

	// a zero mass second between real rows is indistinguishable from filler
	in := tt.Series(5, 2)
	in.Rows[2] = tt.Filled(2, 0)
	in.Rows[3][table.ColBedloadAll] = 0
	for i := table.ColBedloadAll + 1; i < table.Width; i++ {
		in.Rows[3][i] = 0
	}
	in.Rows[3][table.ColVel] = 0.4

	if n := PadToNull(in); n != 1 {
		t.Fatalf("changed = %d, want 1", n)
	}
	if in.Rows[2].HasData() || in.Rows[2].Timestamp() != 2 {
		t.Fatalf("all zero row inside the range should be null with its timestamp kept")
	}
	if !in.Rows[3].HasData() || in.Rows[3][table.ColBedloadAll] != 0 {
		t.Fatalf("zero bedload with a velocity reading must be kept")
	}
	for _, i := range []int{0, 1, 4} {
		if !in.Rows[i].HasData() {
			t.Fatalf("row %d should be untouched", i)
		}
	}
}

func TestStore_KeysAndErrors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := New(root)
	ctx := context.Background()

	loc, err := s.Save(ctx, "out/Qs_1A_rising-62L_t00-t20", tt.Series(1, 1))
	if err != nil || loc != filepath.Join(root, "out", "Qs_1A_rising-62L_t00-t20.txt") {
		t.Fatalf("loc = %q err = %v", loc, err)
	}
	if ok, _ := s.Exists(ctx, "out/Qs_1A_rising-62L_t00-t20.txt"); !ok {
		t.Fatalf("saved table should exist")
	}
	if ok, _ := s.Exists(ctx, "out/none"); ok {
		t.Fatalf("missing table should not exist")
	}
	if _, err := s.Load(ctx, "out/none"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing err = %v", err)
	}
	if _, err := s.Path("../etc/passwd"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("escape err = %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "bad.txt"), []byte("1 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = s.LoadMany(ctx, []string{"out/Qs_1A_rising-62L_t00-t20", "bad"})
	if !perr.IsCode(err, perr.ErrorCodeIO) {
		t.Fatalf("bad file err = %v", err)
	}
	testkit.MustContain(t, err.Error(), "line 1")

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.LoadMany(cctx, []string{"bad"}); err != context.Canceled {
		t.Fatalf("cancelled err = %v", err)
	}
}

func TestStatsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := NewStatsFile(dir)
	ctx := context.Background()

	empty, err := f.LoadStats(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("missing report = %v err = %v", empty, err)
	}

	a := period.MustParseKey("1A/rising-62L/t00-t20")
	b := period.MustParseKey("1A/rising-62L/t20-t40")
	sa := reconcile.Summarize(a, tt.Series(2, 1))
	if err := f.SaveStats(ctx, sa, sa.Keys()); err != nil {
		t.Fatalf("save a: %v", err)
	}
	sb := reconcile.Summarize(b, tt.Chunk(4, 0, 2, 3))
	if err := f.SaveStats(ctx, sb, sb.Keys()); err != nil {
		t.Fatalf("save b: %v", err)
	}

	got, err := f.LoadStats(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("rows = %d, earlier periods must be kept", len(got))
	}
	if v := got[reconcile.StatKey{Period: b, Kind: reconcile.StatNulls}][table.ColBedloadAll]; v != 2 {
		t.Fatalf("nulls = %v", v)
	}

	body, _ := os.ReadFile(f.Path())
	first := strings.SplitN(string(body), "\n", 2)[0]
	testkit.MustContain(t, first, "period\tkind\ttimestamp\tmissing ratio")
	testkit.MustContain(t, string(body), "Qs_1A_rising-62L_t20-t40\tav\t")

	if _, err := ReadStats(strings.NewReader("h\nQs_x\tav\t1\n")); !perr.IsCode(err, perr.ErrorCodeIO) {
		t.Fatalf("short stats line err = %v", err)
	}
}
