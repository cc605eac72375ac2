package period

import (
	"path"
	"sort"
	"strconv"
	"strings"

	perr "qsmerge/internal/platform/errors"
)

// Source is one raw instrument file belonging to a period
type Source struct {
	ID   string // opaque identifier handed to the table store
	Full bool   // Qs: independent full period recording
	Seq  int    // Qs<n>: chunk sequence number, zero for the full recording
}

// ClassifySource inspects the base name of id; Qs is the full recording and Qs<n> is chunk n
func ClassifySource(id string) (Source, error) {
	base := path.Base(strings.ReplaceAll(id, `\`, "/"))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	// raw names may carry the period prefix, e.g. 1A_rising-62L_t40-t60_Qs2
	if i := strings.LastIndexByte(base, '_'); i >= 0 {
		base = base[i+1:]
	}
	if !strings.HasPrefix(base, "Qs") {
		return Source{}, perr.InvalidArgf("source %q: not a Qs file", id)
	}
	rest := base[2:]
	if rest == "" {
		return Source{ID: id, Full: true}, nil
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return Source{}, perr.InvalidArgf("source %q: bad chunk number %q", id, rest)
	}
	return Source{ID: id, Seq: n}, nil
}

// Sources is the classified input set for one period
type Sources struct {
	Full   *Source
	Chunks []Source // ascending Seq
}

// SortIDs orders ids by chunk number with the full recording first, the way
// manifests list them; unparseable names sort first
func SortIDs(ids []string) {
	num := func(id string) int {
		s, err := ClassifySource(id)
		if err != nil {
			return -1
		}
		return s.Seq
	}
	sort.SliceStable(ids, func(i, j int) bool { return num(ids[i]) < num(ids[j]) })
}

// Split classifies ids; a second full recording is an error
func Split(ids []string) (Sources, error) {
	var out Sources
	for _, id := range ids {
		s, err := ClassifySource(id)
		if err != nil {
			return Sources{}, err
		}
		if s.Full {
			if out.Full != nil {
				return Sources{}, perr.Conflictf("duplicate full recording %q and %q", out.Full.ID, id)
			}
			f := s
			out.Full = &f
			continue
		}
		out.Chunks = append(out.Chunks, s)
	}
	sort.SliceStable(out.Chunks, func(i, j int) bool { return out.Chunks[i].Seq < out.Chunks[j].Seq })
	return out, nil
}

// IDs returns the source identifiers in load order
func (s Sources) IDs() []string {
	out := make([]string, 0, len(s.Chunks)+1)
	if s.Full != nil {
		out = append(out, s.Full.ID)
	}
	for _, c := range s.Chunks {
		out = append(out, c.ID)
	}
	return out
}

// Empty reports whether there is nothing to reconcile
func (s Sources) Empty() bool { return s.Full == nil && len(s.Chunks) == 0 }
