package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	// AppName tags client connections, e.g. the build version
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot knobs, zero picks the opener default
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s per attempt
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string

	// Role is reported to the server alongside AppName
	Role string
}
