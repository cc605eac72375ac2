// Package index keeps the period manifest: which raw Qs files belong to which period.
// It implements domain.PeriodIndex
package index

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"

	"qsmerge/internal/core/period"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/logger"

	"gopkg.in/yaml.v3"
)

// qsName matches Qs.txt up to Qs99.txt
var qsName = regexp.MustCompile(`^Qs\d{0,2}\.txt$`)

// Manifest maps periods to source ids. Ids are slash paths relative to the data root
type Manifest struct {
	periods map[period.Key][]string
}

// file is the yaml layout; keys are period key strings
type file struct {
	Periods map[string][]string `yaml:"periods"`
}

// New returns an empty manifest
func New() *Manifest { return &Manifest{periods: map[period.Key][]string{}} }

// Add appends ids to k, deduplicating and keeping manifest order
func (m *Manifest) Add(k period.Key, ids ...string) {
	m.periods[k] = union(m.periods[k], ids)
}

// Len returns the number of periods
func (m *Manifest) Len() int { return len(m.periods) }

// Periods returns keys sorted by experiment, step and window
func (m *Manifest) Periods(context.Context) ([]period.Key, error) {
	keys := make([]period.Key, 0, len(m.periods))
	for k := range m.periods {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys, nil
}

// Sources returns a copy of the ids of k; an unknown period has none
func (m *Manifest) Sources(_ context.Context, k period.Key) ([]string, error) {
	return append([]string(nil), m.periods[k]...), nil
}

// Merge unions other into m; existing lists gain new ids and are re-sorted
func (m *Manifest) Merge(other *Manifest) {
	for k, ids := range other.periods {
		m.Add(k, ids...)
	}
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	period.SortIDs(out)
	return out
}

// Parse decodes a yaml manifest
func Parse(b []byte) (*Manifest, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "manifest: decode")
	}
	m := New()
	for s, ids := range f.Periods {
		k, err := period.ParseKey(s)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, perr.WithField(perr.Validationf("manifest: period %s has no sources", k), "periods")
		}
		m.Add(k, ids...)
	}
	return m, nil
}

// Load reads the manifest at p
func Load(p string) (*Manifest, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perr.Wrap(err, perr.ErrorCodeNotFound, "manifest: "+p)
		}
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "manifest: read "+p)
	}
	return Parse(b)
}

// Marshal encodes m with keys in processing order
func (m *Manifest) Marshal() ([]byte, error) {
	f := file{Periods: make(map[string][]string, len(m.periods))}
	for k, ids := range m.periods {
		f.Periods[k.String()] = ids
	}
	// yaml.v3 sorts map keys, which matches Key.Less for well formed keys
	return yaml.Marshal(f)
}

// Save writes m to p through a temp file in the same directory
func (m *Manifest) Save(p string) error {
	b, err := m.Marshal()
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "manifest: encode")
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".manifest-*")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "manifest: temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return perr.Wrap(err, perr.ErrorCodeIO, "manifest: write")
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "manifest: close")
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "manifest: rename")
	}
	return nil
}

// Scan walks root for Qs files and groups them by the period of their directory.
// Directories whose path does not end in a period key are skipped
func Scan(ctx context.Context, root string) (*Manifest, error) {
	log := logger.C(ctx)
	m := New()
	skipped := map[string]bool{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !qsName.MatchString(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		id := filepath.ToSlash(rel)
		dir := path.Dir(id)
		k, err := period.ParseKey(dir)
		if err != nil {
			if !skipped[dir] {
				skipped[dir] = true
				log.Warn().Str("dir", dir).Msg("manifest: directory is not a period, skipping")
			}
			return nil
		}
		m.Add(k, id)
		return nil
	})
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "manifest: scan "+root)
	}
	log.Info().Int("periods", m.Len()).Str("root", root).Msg("manifest: scanned")
	return m, nil
}
