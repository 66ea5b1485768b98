package registry

import (
	"bytes"
	"io"
	"sort"

	"github.com/rs/zerolog"
)

// Store is the host build system's output capability: register a new
// output artifact with an explicit input-dependency set and an
// aggregating flag, and receive a stream for its content. The aggregating
// flag tells the host the artifact is not a function of a single input
// unit: it must be regenerated whenever any unit in deps changes, and
// whenever a newly contributing unit appears.
type Store interface {
	Create(path string, deps []string, aggregating bool) (io.WriteCloser, error)
}

// Emit produces exactly one manifest artifact per interface key in g and
// clears g. Content is the deduplicated, lexicographically sorted set of
// implementer binary names, one per line with a trailing line separator.
// Re-running Emit on an identical grouping yields byte-identical content.
//
// Any write failure aborts the round: a partial manifest would make a
// runtime loader silently see an incomplete service list.
func Emit(g *Grouping, store Store, log zerolog.Logger) ([]Artifact, error) {
	keys := make([]string, 0, len(g.groups))
	for key := range g.groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	artifacts := make([]Artifact, 0, len(keys))
	for _, key := range keys {
		a, err := emitOne(key, g.groups[key], store)
		if err != nil {
			return nil, err
		}
		log.Debug().
			Str("path", a.Path).
			Int("implementers", bytes.Count(a.Content, []byte("\n"))).
			Int("units", len(a.Units)).
			Msg("wrote manifest")
		artifacts = append(artifacts, a)
	}

	g.reset()
	return artifacts, nil
}

func emitOne(key string, entries map[entry]struct{}, store Store) (Artifact, error) {
	implSet := make(map[string]struct{})
	unitSet := make(map[string]struct{})
	for e := range entries {
		implSet[e.impl] = struct{}{}
		unitSet[e.unit] = struct{}{}
	}

	impls := make([]string, 0, len(implSet))
	for impl := range implSet {
		impls = append(impls, impl)
	}
	sort.Strings(impls)

	units := make([]string, 0, len(unitSet))
	for unit := range unitSet {
		units = append(units, unit)
	}
	sort.Strings(units)

	var buf bytes.Buffer
	for _, impl := range impls {
		buf.WriteString(impl)
		buf.WriteByte('\n')
	}

	path := ManifestDir + "/" + key
	w, err := store.Create(path, units, true)
	if err != nil {
		return Artifact{}, &WriteError{Path: path, Err: err}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		_ = w.Close()
		return Artifact{}, &WriteError{Path: path, Err: err}
	}
	if err := w.Close(); err != nil {
		return Artifact{}, &WriteError{Path: path, Err: err}
	}

	return Artifact{Path: path, Units: units, Content: buf.Bytes()}, nil
}
