package module

import (
	"time"

	"qsmerge/internal/core/reconcile"
	"qsmerge/internal/platform/config"
	"qsmerge/internal/platform/validate"
)

// Options holds configuration for the reconcile service
type Options struct {
	DataRoot    string `json:"data_root" validate:"required"`
	Manifest    string `json:"manifest" validate:"required"`
	Corrections string `json:"corrections"` // empty uses the built in catalogue
	TxtOut      string `json:"txt_out"`     // empty disables the text mirror

	Tolerance float64 `json:"tolerance" validate:"gte=0,lte=1"`
	Cutoff    float64 `json:"cutoff" validate:"gt=0"`
	HighTrim  float64 `json:"high_trim" validate:"gte=0,ltefield=MaxTrim"`
	MaxTrim   float64 `json:"max_trim" validate:"gt=0,lte=1"`

	ZeroPadAsNull bool `json:"zero_pad_as_null"`
	StatsExport   bool `json:"stats_export"`

	MaxRetries       int           `json:"retries" validate:"gte=0,lte=20"`
	RetryBase        time.Duration `json:"retry_base" validate:"gte=0"`
	PeriodTimeout    time.Duration `json:"period_timeout" validate:"gte=0"`
	LoadTimeout      time.Duration `json:"load_timeout" validate:"gte=0"`
	DBTimeout        time.Duration `json:"db_timeout" validate:"gte=0"`
	StatementTimeout time.Duration `json:"statement_timeout" validate:"gte=0"`
}

// FromConfig reads the reconcile options from config with CORE_RECONCILE_ prefix
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("CORE_RECONCILE_")
	lim := reconcile.DefaultLimits()
	return Options{
		DataRoot:    rc.MayString("DATA_ROOT", ""),
		Manifest:    rc.MayString("MANIFEST", ""),
		Corrections: rc.MayString("CORRECTIONS", ""),
		TxtOut:      rc.MayString("TXT_OUT", ""),

		Tolerance: rc.MayFloat64("TOLERANCE", reconcile.DefaultTolerance),
		Cutoff:    rc.MayFloat64("CUTOFF", reconcile.DefaultCutoff),
		HighTrim:  rc.MayFloat64("HIGH_TRIM", lim.HighTrim),
		MaxTrim:   rc.MayFloat64("MAX_TRIM", lim.MaxTrim),

		ZeroPadAsNull: rc.MayBool("ZERO_PAD_AS_NULL", true),
		StatsExport:   rc.MayBool("STATS_EXPORT", false),

		MaxRetries:       rc.MayInt("RETRIES", 3),
		RetryBase:        rc.MayDuration("RETRY_BASE", 500*time.Millisecond),
		PeriodTimeout:    rc.MayDuration("PERIOD_TIMEOUT", 5*time.Minute),
		LoadTimeout:      rc.MayDuration("LOAD_TIMEOUT", 2*time.Minute),
		DBTimeout:        rc.MayDuration("DB_TIMEOUT", 30*time.Second),
		StatementTimeout: rc.MayDuration("STATEMENT_TIMEOUT", 0),
	}
}

// Validate checks the options, returning a perr validation error naming the field
func (o Options) Validate() error { return validate.Struct(o) }
