// Package registry implements the core of the service-manifest generator:
// grouping marker occurrences by service interface and emitting one
// deterministic manifest artifact per interface.
//
// The package is frontend-agnostic. A frontend (internal/scan for Go
// source) resolves declarations into Occurrence values; the registry only
// validates, groups and emits. All state lives in a per-round Grouping
// that is created empty, filled by Collect, and consumed by Emit.
package registry

import "strings"

// ManifestDir is the directory prefix for generated manifests, relative
// to the generated-resources root. A runtime loader requests
// ManifestDir + "/" + interface binary name.
const ManifestDir = "META-INF/services"

// Kind classifies the declaration carrying a marker.
type Kind int

const (
	// KindNamed is a top-level named declaration with a stable binary name.
	KindNamed Kind = iota
	// KindLocal is a declaration inside a function body.
	KindLocal
	// KindAnonymous is an unnamed declaration.
	KindAnonymous
)

func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindLocal:
		return "local"
	case KindAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// QualifiedName is the structured identity of a declaration: its package,
// the chain of enclosing named declarations (outermost first), and its
// simple name. Package may be empty for declarations without one.
type QualifiedName struct {
	Package string
	Outer   []string
	Name    string
}

// Binary renders the name the way a runtime loader requests it: the
// package joined to the declaration chain with a dot, and nested
// declarations separated by '$' instead of the source-level dot.
// "pkg" + ["Outer"] + "Inner" → "pkg.Outer$Inner".
func (q QualifiedName) Binary() string {
	chain := q.chain("$")
	if q.Package == "" {
		return chain
	}
	return q.Package + "." + chain
}

// String renders the source-level dotted form ("pkg.Outer.Inner").
func (q QualifiedName) String() string {
	chain := q.chain(".")
	if q.Package == "" {
		return chain
	}
	return q.Package + "." + chain
}

func (q QualifiedName) chain(sep string) string {
	if len(q.Outer) == 0 {
		return q.Name
	}
	return strings.Join(q.Outer, sep) + sep + q.Name
}

// Occurrence is one marker found in source: a declaration that requests
// registration under a set of service interfaces. The frontend resolves
// everything here; the registry never consults the type system itself.
type Occurrence struct {
	Implementer QualifiedName
	Kind        Kind

	// Interfaces is the declared service-interface set. nil means the
	// marker construct had no argument at all; an empty non-nil slice
	// means the argument was present but named no interfaces. The two
	// produce distinct errors.
	Interfaces []QualifiedName

	// Supertypes is the implementer's full supertype closure, keyed by
	// binary name. Consulted only when verification is enabled.
	Supertypes map[string]struct{}

	// Unit is the originating source unit. It feeds the dependency set of
	// every manifest this occurrence contributes to and never appears in
	// manifest content.
	Unit string

	// Pos is a human-readable source position for diagnostics.
	Pos string
}

// Options is the process-wide configuration, read once per invocation.
type Options struct {
	// Verify enables the implements check during collection.
	Verify bool
	// Verbose enables diagnostic logging of grouping decisions. It never
	// affects output content.
	Verbose bool
}

type entry struct {
	impl string // implementer binary name
	unit string // originating source unit
}

// Grouping accumulates collected entries keyed by interface binary name.
// It is scoped to a single round: constructed at round start, passed into
// Collect, consumed and cleared by Emit.
type Grouping struct {
	groups map[string]map[entry]struct{}
}

// NewGrouping returns an empty per-round accumulator.
func NewGrouping() *Grouping {
	return &Grouping{groups: make(map[string]map[entry]struct{})}
}

func (g *Grouping) add(iface, impl, unit string) {
	set, ok := g.groups[iface]
	if !ok {
		set = make(map[entry]struct{})
		g.groups[iface] = set
	}
	set[entry{impl: impl, unit: unit}] = struct{}{}
}

// Len returns the number of interface keys accumulated so far.
func (g *Grouping) Len() int {
	return len(g.groups)
}

// Implementers returns the deduplicated implementer binary names recorded
// under an interface key, in unspecified order.
func (g *Grouping) Implementers(iface string) []string {
	seen := make(map[string]struct{})
	var names []string
	for e := range g.groups[iface] {
		if _, dup := seen[e.impl]; dup {
			continue
		}
		seen[e.impl] = struct{}{}
		names = append(names, e.impl)
	}
	return names
}

func (g *Grouping) reset() {
	g.groups = make(map[string]map[entry]struct{})
}

// Artifact describes one emitted manifest: its path relative to the
// generated-resources root, the source units it depends on, and the exact
// bytes written.
type Artifact struct {
	Path    string
	Units   []string
	Content []byte
}
