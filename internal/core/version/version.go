// Package version provides information about the build version of the service.
package version

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The variables below are set at build time, e.g.
// -ldflags "-X 'qsmerge/internal/core/version.version=v0.3.0' -X 'qsmerge/internal/core/version.commit=abcd'"
func Info() BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	service = "qsmerge"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
