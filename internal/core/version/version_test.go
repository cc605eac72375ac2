package version

import "testing"

func TestInfo_Defaults(t *testing.T) {
	got := Info()
	if got.Service != "qsmerge" || got.Version != "dev" || got.Commit != "none" || got.Date != "unknown" {
		t.Fatalf("info = %+v", got)
	}
}
