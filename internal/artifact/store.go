// Package artifact is the host side of the generator's output capability:
// a filesystem artifact store rooted at the generated-resources directory,
// plus an incremental index recording each artifact's declared dependency
// set so a build driver can answer staleness queries between rounds.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"autosvc/pkg/log"
)

// DirStore writes artifacts under a root directory. Each artifact is
// written to a temporary file and renamed into place on Close, so a
// manifest either appears complete or not at all — stale content is never
// patched in place.
type DirStore struct {
	root  string
	index *Index
	log   zerolog.Logger
}

// NewDirStore opens (or initializes) a store rooted at dir, loading the
// incremental index left by a previous round if one exists.
func NewDirStore(dir string) (*DirStore, error) {
	index, err := LoadIndex(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, err
	}
	return &DirStore{
		root:  dir,
		index: index,
		log:   log.New("artifact"),
	}, nil
}

// Create registers a new output artifact with its input-dependency set
// and aggregating flag, and returns a stream for its content. The path is
// interpreted relative to the store root and must stay inside it.
func (s *DirStore) Create(path string, deps []string, aggregating bool) (io.WriteCloser, error) {
	rel, err := s.contain(path)
	if err != nil {
		return nil, err
	}

	full := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), "."+filepath.Base(full)+".tmp-*")
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("path", path).
		Int("deps", len(deps)).
		Bool("aggregating", aggregating).
		Msg("artifact registered")

	return &fileWriter{
		tmp:   tmp,
		final: full,
		done: func() {
			s.index.Put(path, deps, aggregating)
		},
	}, nil
}

// Flush persists the incremental index next to the artifacts.
func (s *DirStore) Flush() error {
	return s.index.Save(filepath.Join(s.root, IndexFile))
}

// Index exposes the store's incremental index.
func (s *DirStore) Index() *Index { return s.index }

// contain normalizes path and rejects anything escaping the root.
func (s *DirStore) contain(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("artifact path %q is absolute", path)
	}
	rel := filepath.Clean(filepath.FromSlash(path))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact path %q escapes the store root", path)
	}
	return rel, nil
}

// fileWriter stages content in a temp file and publishes it on Close.
type fileWriter struct {
	tmp   *os.File
	final string
	done  func()
}

func (w *fileWriter) Write(p []byte) (int, error) {
	return w.tmp.Write(p)
}

func (w *fileWriter) Close() error {
	name := w.tmp.Name()
	if err := w.tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, w.final); err != nil {
		_ = os.Remove(name)
		return err
	}
	w.done()
	return nil
}
