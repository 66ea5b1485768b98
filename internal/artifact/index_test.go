package artifact

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Stale(t *testing.T) {
	idx := &Index{Artifacts: make(map[string]Record)}
	idx.Put("META-INF/services/pkg.I", []string{"a.go", "b.go"}, true)
	idx.Put("META-INF/services/pkg.J", []string{"a.go"}, true)
	idx.Put("copied/resource", []string{"res.txt"}, false)

	tests := map[string]struct {
		changed       []string
		markerBearing map[string]bool
		expected      []string
	}{
		"no changes": {
			changed:  nil,
			expected: nil,
		},
		"shared unit invalidates both manifests": {
			changed:  []string{"a.go"},
			expected: []string{"META-INF/services/pkg.I", "META-INF/services/pkg.J"},
		},
		"unit contributing to one manifest": {
			changed:  []string{"b.go"},
			expected: []string{"META-INF/services/pkg.I"},
		},
		"unrelated unit without markers": {
			changed:  []string{"other.go"},
			expected: nil,
		},
		"new marker-bearing unit invalidates aggregating artifacts only": {
			changed:       []string{"new.go"},
			markerBearing: map[string]bool{"new.go": true},
			expected:      []string{"META-INF/services/pkg.I", "META-INF/services/pkg.J"},
		},
		"non-aggregating artifact follows its own unit": {
			changed:  []string{"res.txt"},
			expected: []string{"copied/resource"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, idx.Stale(test.changed, test.markerBearing))
		})
	}
}

func TestIndex_DepsChanged(t *testing.T) {
	idx := &Index{Artifacts: make(map[string]Record)}
	idx.Put("META-INF/services/pkg.I", []string{"a.go", "b.go"}, true)

	// Order-insensitive: the hash is computed over the sorted set.
	assert.False(t, idx.DepsChanged("META-INF/services/pkg.I", []string{"b.go", "a.go"}))
	assert.True(t, idx.DepsChanged("META-INF/services/pkg.I", []string{"a.go"}))
	assert.True(t, idx.DepsChanged("unknown", []string{"a.go"}))
}

func TestIndex_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), IndexFile)

	idx := &Index{Artifacts: make(map[string]Record)}
	idx.Put("META-INF/services/pkg.I", []string{"a.go"}, true)
	require.NoError(t, idx.Save(path))

	loaded, err := LoadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, idx.Artifacts, loaded.Artifacts)
}

func TestLoadIndex_MissingFile(t *testing.T) {
	idx, err := LoadIndex(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Empty(t, idx.Artifacts)
}
