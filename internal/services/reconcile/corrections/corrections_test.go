package corrections

import (
	"os"
	"path/filepath"
	"testing"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	tt "qsmerge/internal/core/table/tabletest"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/testkit"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	f, err := Default()
	if err != nil {
		t.Fatalf("embedded catalogue: %v", err)
	}
	if f.FirstDataLine != 2 || len(f.Deletions) != 3 || len(f.Suspicious) != 16 {
		t.Fatalf("catalogue = %+v", f)
	}

	c := f.Corrector()
	k := period.MustParseKey("1A/rising-62L/t40-t60")
	rs := c.Ranges(k)
	if len(rs) != 8 {
		t.Fatalf("ranges = %v", rs)
	}
	// highest first, shifted to row indexes
	if rs[0] != (reconcile.Range{First: 1629, Last: 1636}) || rs[7] != (reconcile.Range{First: 388, Last: 395}) {
		t.Fatalf("ranges = %v", rs)
	}
	if got := c.Ranges(period.MustParseKey("2A/rising-50L/t00-t60")); len(got) != 1 || got[0].Len() != 2574 {
		t.Fatalf("2A ranges = %v", got)
	}
	if !c.Suspicious(period.MustParseKey("3A/falling-87L/t20-t40")) || c.Suspicious(k) {
		t.Fatalf("suspicious list mismatch")
	}
}

func TestDefault_AppliesToRows(t *testing.T) {
	t.Parallel()

	f, err := Default()
	if err != nil {
		t.Fatalf("embedded catalogue: %v", err)
	}
	k := period.MustParseKey("3A/rising-75L/t00-t20")
	out, rep := f.Corrector().Apply(k, tt.Series(2600, 1))
	if rep.Removed != 1444 || out.Len() != 1156 {
		t.Fatalf("removed %d, len %d", rep.Removed, out.Len())
	}
	if out.Rows[923].Timestamp() != 923 || out.Rows[924].Timestamp() != 924 {
		t.Fatalf("timestamps should close the gap")
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		body  string
		code  perr.ErrorCode
		field string
	}{
		{"bad yaml", "deletions: [", perr.ErrorCodeInvalidArgument, ""},
		{"unknown field", "first_data_line: 2\nextra: 1\n", perr.ErrorCodeInvalidArgument, ""},
		{"bad period", "deletions:\n  - period: nope\n    lines: [{first: 1, last: 2}]\n", perr.ErrorCodeValidation, "period"},
		{"reversed lines", "deletions:\n  - period: 1A/s/t00-t20\n    lines: [{first: 5, last: 2}]\n", perr.ErrorCodeValidation, "last"},
		{"no lines", "deletions:\n  - period: 1A/s/t00-t20\n", perr.ErrorCodeValidation, "lines"},
		{"bad suspicious", "suspicious: [1A]\n", perr.ErrorCodeValidation, "suspicious[0]"},
		{"duplicate period", "deletions:\n  - period: 1A/s/t00-t20\n    lines: [{first: 1, last: 2}]\n  - period: 1A/s/t00-t20\n    lines: [{first: 4, last: 5}]\n", perr.ErrorCodeValidation, "period"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.body))
			if !perr.IsCode(err, tc.code) {
				t.Fatalf("err = %v, want code %v", err, tc.code)
			}
			if tc.field == "" {
				return
			}
			if e, ok := perr.As(err); !ok || e.Field() != tc.field {
				t.Fatalf("field = %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	if f, err := Load(""); err != nil || len(f.Deletions) != 3 {
		t.Fatalf("empty path should use the embedded catalogue: %v", err)
	}

	p := filepath.Join(t.TempDir(), "fix.yaml")
	body := "first_data_line: 0\ndeletions:\n  - period: 9Z/rising-1L/t00-t01\n    lines: [{first: 0, last: 9}]\n"
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rs := f.Corrector().Ranges(period.MustParseKey("9Z/rising-1L/t00-t01"))
	if len(rs) != 1 || rs[0].Len() != 10 || rs[0].First != 0 {
		t.Fatalf("ranges = %v", rs)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !perr.IsCode(err, perr.ErrorCodeIO) {
		t.Fatalf("missing file err = %v", err)
	}
	testkit.MustContain(t, err.Error(), "missing.yaml")
}
