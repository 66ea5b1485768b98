package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualifiedName_Binary(t *testing.T) {
	tests := map[string]struct {
		name     QualifiedName
		expected string
	}{
		"top-level": {
			name:     QualifiedName{Package: "example.com/pkg", Name: "Impl"},
			expected: "example.com/pkg.Impl",
		},
		"nested": {
			name:     QualifiedName{Package: "pkg", Outer: []string{"Outer"}, Name: "Inner"},
			expected: "pkg.Outer$Inner",
		},
		"doubly nested": {
			name:     QualifiedName{Package: "pkg", Outer: []string{"A", "B"}, Name: "C"},
			expected: "pkg.A$B$C",
		},
		"no package": {
			name:     QualifiedName{Name: "Impl"},
			expected: "Impl",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.name.Binary())
		})
	}
}

func TestQualifiedName_String(t *testing.T) {
	q := QualifiedName{Package: "pkg", Outer: []string{"Outer"}, Name: "Inner"}

	// Source-level form keeps dots; only Binary uses the '$' separator.
	assert.Equal(t, "pkg.Outer.Inner", q.String())
	assert.Equal(t, "pkg.Outer$Inner", q.Binary())
}

func TestGrouping_Implementers(t *testing.T) {
	g := NewGrouping()
	g.add("pkg.I", "pkg.A", "a.go")
	g.add("pkg.I", "pkg.A", "other.go") // same implementer, different unit
	g.add("pkg.I", "pkg.B", "b.go")

	assert.Equal(t, 1, g.Len())
	assert.ElementsMatch(t, []string{"pkg.A", "pkg.B"}, g.Implementers("pkg.I"))
}
