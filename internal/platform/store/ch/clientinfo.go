package ch

import (
	"cmp"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo is what system.query_log shows for our connections:
// the release tag, the role (api or reconcile), go version, short commit and host
func BuildClientInfo(role, tag string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	info := clickhouse.ClientInfo{}
	for _, p := range [][2]string{
		{"qsmerge", tag},
		{"role", role},
		{"go", runtime.Version()},
		{"commit", shortCommit()},
		{"host", host},
	} {
		info.Products = append(info.Products, struct{ Name, Version string }{p[0], cmp.Or(strings.TrimSpace(p[1]), "unknown")})
	}
	return info
}

func shortCommit() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			return s.Value[:min(7, len(s.Value))]
		}
	}
	return ""
}
