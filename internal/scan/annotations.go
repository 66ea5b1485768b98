package scan

import (
	"go/ast"
	"strings"
)

// Marker kinds
const (
	MarkerService = "service" // //autosvc:service InterfaceName[, InterfaceName...]
	MarkerIgnore  = "ignore"  // //autosvc:ignore
)

// Marker represents a parsed //autosvc: directive.
type Marker struct {
	Kind     string
	Value    string
	HasValue bool // distinguishes a missing argument from an empty one
}

// ParseMarkers extracts //autosvc: directives from a declaration's doc
// comments.
func ParseMarkers(doc *ast.CommentGroup) []Marker {
	if doc == nil {
		return nil
	}

	var markers []Marker
	for _, comment := range doc.List {
		text := strings.TrimSpace(comment.Text)
		text = strings.TrimPrefix(text, "//")
		text = strings.TrimSpace(text)

		if !strings.HasPrefix(text, "autosvc:") {
			continue
		}
		text = strings.TrimPrefix(text, "autosvc:")

		parts := strings.SplitN(text, " ", 2)
		kind := strings.TrimSpace(parts[0])
		value := ""
		hasValue := len(parts) > 1
		if hasValue {
			value = strings.TrimSpace(parts[1])
		}

		switch kind {
		case MarkerService, MarkerIgnore:
			markers = append(markers, Marker{Kind: kind, Value: value, HasValue: hasValue})
		}
	}
	return markers
}

// FindMarker returns the first marker of the given kind.
func FindMarker(markers []Marker, kind string) (Marker, bool) {
	for _, m := range markers {
		if m.Kind == kind {
			return m, true
		}
	}
	return Marker{}, false
}

// SplitInterfaceList splits a service marker value into interface
// references. Both commas and whitespace separate entries; empty entries
// are dropped, so a value of "," or "  " yields an empty (not nil) list.
func SplitInterfaceList(value string) []string {
	refs := []string{}
	for _, part := range strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		if part = strings.TrimSpace(part); part != "" {
			refs = append(refs, part)
		}
	}
	return refs
}
