package qstxt

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"qsmerge/internal/core/period"
	"qsmerge/internal/core/table"
	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/logger"
)

// Store is a domain.TableStore over a directory. Keys are slash paths relative
// to the root; a missing .txt extension is added
type Store struct {
	root    string
	zeroPad bool
}

// Option configures a Store
type Option func(*Store)

// WithZeroPadAsNull blanks all zero filler rows of chunk files on load
func WithZeroPadAsNull(on bool) Option { return func(s *Store) { s.zeroPad = on } }

// New returns a store rooted at dir
func New(dir string, opts ...Option) *Store {
	s := &Store{root: dir}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Root returns the directory the store reads and writes
func (s *Store) Root() string { return s.root }

// Path maps key to a file path under the root
func (s *Store) Path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", perr.WithField(perr.InvalidArgf("qstxt: key %q escapes the root", key), "key")
	}
	if filepath.Ext(clean) != ".txt" {
		clean += ".txt"
	}
	return filepath.Join(s.root, clean), nil
}

// Exists implements domain.TableStore
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	p, err := s.Path(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, perr.Wrap(err, perr.ErrorCodeIO, "qstxt: stat "+p)
	}
}

// Load implements domain.TableStore
func (s *Store) Load(ctx context.Context, key string) (*table.Table, error) {
	p, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perr.Wrap(err, perr.ErrorCodeNotFound, "qstxt: "+key)
		}
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "qstxt: read "+p)
	}
	t, err := Read(bytes.NewReader(b))
	if err != nil {
		return nil, perr.WithOp(err, "qstxt: "+key)
	}
	padded := 0
	if s.zeroPad && isChunk(key) {
		padded = PadToNull(t)
	}
	logger.C(ctx).Debug().Str("key", key).Int("rows", t.Len()).Int("padding", padded).Msg("qstxt: loaded")
	return t, nil
}

// isChunk reports whether key names a Qs<n> chunk file
func isChunk(key string) bool {
	src, err := period.ClassifySource(key)
	return err == nil && !src.Full
}

// LoadMany implements domain.TableStore; it stops at the first failure
func (s *Store) LoadMany(ctx context.Context, keys []string) ([]*table.Table, error) {
	out := make([]*table.Table, 0, len(keys))
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := s.Load(ctx, k)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Save writes t under key and returns the file path
func (s *Store) Save(_ context.Context, key string, t *table.Table) (string, error) {
	p, err := s.Path(key)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := Write(&buf, t); err != nil {
		return "", err
	}
	if err := writeFileAtomic(p, buf.Bytes()); err != nil {
		return "", err
	}
	return p, nil
}

// writeFileAtomic creates parent dirs then renames a temp file over p
func writeFileAtomic(p string, b []byte) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "qstxt: mkdir "+dir)
	}
	tmp, err := os.CreateTemp(dir, ".qstxt-*")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "qstxt: temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return perr.Wrap(err, perr.ErrorCodeIO, "qstxt: write "+p)
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "qstxt: close "+p)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "qstxt: rename "+p)
	}
	return nil
}
