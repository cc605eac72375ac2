// Package corrections loads the curated per period deletions and the suspicious
// period list. An embedded catalogue is used unless a file overrides it
package corrections

import (
	"bytes"
	_ "embed"
	"os"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/reconcile"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/validate"

	"gopkg.in/yaml.v3"
)

//go:embed corrections.yaml
var embedded []byte

// Lines is an inclusive span of file line numbers
type Lines struct {
	First int `yaml:"first" validate:"gte=0"`
	Last  int `yaml:"last" validate:"gtefield=First"`
}

// Deletion names the line spans to drop from one period
type Deletion struct {
	Period string  `yaml:"period" validate:"required,period_key"`
	Lines  []Lines `yaml:"lines" validate:"required,min=1,dive"`
}

// File is the on disk catalogue
type File struct {
	// FirstDataLine is the file line holding row zero
	FirstDataLine int        `yaml:"first_data_line" validate:"gte=0"`
	Deletions     []Deletion `yaml:"deletions" validate:"dive"`
	Suspicious    []string   `yaml:"suspicious" validate:"dive,required,period_key"`
}

// Default parses the embedded catalogue
func Default() (*File, error) { return Parse(embedded) }

// Load reads path, or the embedded catalogue when path is empty
func Load(path string) (*File, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "corrections: read "+path)
	}
	return Parse(b)
}

// Parse decodes and validates a catalogue; unknown fields are rejected
func Parse(b []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "corrections: decode")
	}
	if err := validate.Struct(f); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(f.Deletions))
	for _, d := range f.Deletions {
		k := period.MustParseKey(d.Period).String()
		if seen[k] {
			return nil, perr.WithField(perr.Validationf("corrections: period %s listed twice", k), "period")
		}
		seen[k] = true
	}
	return &f, nil
}

// Corrector converts line numbers to row indexes and builds the reconcile corrector
func (f *File) Corrector() *reconcile.Corrector {
	dels := make(map[period.Key][]reconcile.Range, len(f.Deletions))
	for _, d := range f.Deletions {
		k := period.MustParseKey(d.Period)
		for _, l := range d.Lines {
			dels[k] = append(dels[k], reconcile.Range{
				First: l.First - f.FirstDataLine,
				Last:  l.Last - f.FirstDataLine,
			})
		}
	}
	sus := make([]period.Key, 0, len(f.Suspicious))
	for _, s := range f.Suspicious {
		sus = append(sus, period.MustParseKey(s))
	}
	return reconcile.NewCorrector(dels, sus)
}
