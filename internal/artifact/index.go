package artifact

import (
	"os"
	"sort"

	"github.com/ilyam8/hashstructure"
	"gopkg.in/yaml.v2"
)

// IndexFile is the name of the incremental index within the store root.
const IndexFile = ".autosvc-index.yml"

// Record describes one registered artifact: the source units it was
// computed from, whether it aggregates contributions from many units, and
// a hash of the dependency set for cheap change detection.
type Record struct {
	Deps        []string `yaml:"deps"`
	Aggregating bool     `yaml:"aggregating"`
	DepsHash    uint64   `yaml:"deps_hash"`
}

// Index maps artifact paths to their dependency records. It is what an
// incremental build driver consults to decide which artifacts a set of
// recompiled units invalidates.
type Index struct {
	Artifacts map[string]Record `yaml:"artifacts"`
}

// LoadIndex reads an index file, returning an empty index if none exists.
func LoadIndex(path string) (*Index, error) {
	idx := &Index{Artifacts: make(map[string]Record)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, idx); err != nil {
		return nil, err
	}
	if idx.Artifacts == nil {
		idx.Artifacts = make(map[string]Record)
	}
	return idx, nil
}

// Save writes the index to path.
func (i *Index) Save(path string) error {
	data, err := yaml.Marshal(i)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Put records an artifact's dependency set, replacing any prior record.
func (i *Index) Put(path string, deps []string, aggregating bool) {
	sorted := append([]string(nil), deps...)
	sort.Strings(sorted)

	hash, err := hashstructure.Hash(sorted, nil)
	if err != nil {
		// Hashing a []string cannot fail; keep the zero hash if it ever does.
		hash = 0
	}
	i.Artifacts[path] = Record{
		Deps:        sorted,
		Aggregating: aggregating,
		DepsHash:    hash,
	}
}

// DepsChanged reports whether an artifact's dependency set differs from
// the recorded one. Unknown paths always count as changed.
func (i *Index) DepsChanged(path string, deps []string) bool {
	rec, ok := i.Artifacts[path]
	if !ok {
		return true
	}
	sorted := append([]string(nil), deps...)
	sort.Strings(sorted)
	hash, err := hashstructure.Hash(sorted, nil)
	if err != nil {
		return true
	}
	return hash != rec.DepsHash
}

// Stale returns the artifact paths invalidated by a set of changed source
// units, sorted. An artifact is stale when any unit in its dependency set
// changed; an aggregating artifact is additionally stale when a changed
// unit is a new contributor, i.e. not in its recorded dependency set but
// flagged as marker-bearing by the caller.
func (i *Index) Stale(changedUnits []string, markerBearing map[string]bool) []string {
	changed := make(map[string]bool, len(changedUnits))
	for _, u := range changedUnits {
		changed[u] = true
	}

	var stale []string
	for path, rec := range i.Artifacts {
		if i.isStale(rec, changed, markerBearing) {
			stale = append(stale, path)
		}
	}
	sort.Strings(stale)
	return stale
}

func (i *Index) isStale(rec Record, changed, markerBearing map[string]bool) bool {
	deps := make(map[string]bool, len(rec.Deps))
	for _, d := range rec.Deps {
		deps[d] = true
	}
	for u := range changed {
		if deps[u] {
			return true
		}
		// A recompiled unit that now carries markers may contribute to any
		// aggregating artifact, even one it never contributed to before.
		if rec.Aggregating && markerBearing[u] {
			return true
		}
	}
	return false
}
