package scan

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docGroup(lines ...string) *ast.CommentGroup {
	group := &ast.CommentGroup{}
	for _, line := range lines {
		group.List = append(group.List, &ast.Comment{Text: line})
	}
	return group
}

func TestParseMarkers(t *testing.T) {
	tests := map[string]struct {
		doc      *ast.CommentGroup
		expected []Marker
	}{
		"nil doc": {
			doc:      nil,
			expected: nil,
		},
		"plain comment": {
			doc:      docGroup("// English greets in English."),
			expected: nil,
		},
		"service marker with value": {
			doc: docGroup("// English greets.", "//autosvc:service greet.Greeter"),
			expected: []Marker{
				{Kind: MarkerService, Value: "greet.Greeter", HasValue: true},
			},
		},
		"service marker with spaced comment": {
			doc: docGroup("// autosvc:service Greeter"),
			expected: []Marker{
				{Kind: MarkerService, Value: "Greeter", HasValue: true},
			},
		},
		"service marker without argument": {
			doc: docGroup("//autosvc:service"),
			expected: []Marker{
				{Kind: MarkerService, HasValue: false},
			},
		},
		"ignore marker": {
			doc: docGroup("//autosvc:ignore"),
			expected: []Marker{
				{Kind: MarkerIgnore, HasValue: false},
			},
		},
		"unknown kind skipped": {
			doc:      docGroup("//autosvc:frobnicate x"),
			expected: nil,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, ParseMarkers(test.doc))
		})
	}
}

func TestSplitInterfaceList(t *testing.T) {
	tests := map[string]struct {
		value    string
		expected []string
	}{
		"single":            {value: "Greeter", expected: []string{"Greeter"}},
		"comma separated":   {value: "greet.Greeter, greet.Farewell", expected: []string{"greet.Greeter", "greet.Farewell"}},
		"space separated":   {value: "A B", expected: []string{"A", "B"}},
		"only separators":   {value: " , ", expected: []string{}},
		"trailing comma":    {value: "A,", expected: []string{"A"}},
		"repeated commas":   {value: "A,,B", expected: []string{"A", "B"}},
		"empty value":       {value: "", expected: []string{}},
		"full import path":  {value: "example.com/demo/greet.Greeter", expected: []string{"example.com/demo/greet.Greeter"}},
		"generic reference": {value: "store.Driver[string]", expected: []string{"store.Driver[string]"}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, test.expected, SplitInterfaceList(test.value))
		})
	}
}
