// Package scan is the Go-source frontend of the manifest generator. It
// loads packages with full type information, finds //autosvc:service
// markers on type declarations, and resolves each into a structured
// occurrence for the registry core.
package scan

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"

	"autosvc/internal/registry"
	"autosvc/pkg/log"
)

// Scanner discovers marker occurrences by loading and analyzing Go
// packages.
type Scanner struct {
	cfg      *Config
	fset     *token.FileSet
	excludes []glob.Glob
	log      zerolog.Logger

	// ifaceTypes maps interface binary name → *types.Interface for every
	// exported interface type in the loaded universe. It backs both
	// reference resolution and supertype-closure computation.
	ifaceTypes map[string]*types.Interface

	// pkgNameToPath maps package short name → import path for all loaded
	// packages and their imports.
	pkgNameToPath map[string]string
}

// NewScanner creates a scanner, compiling the config's exclude globs.
func NewScanner(cfg *Config) (*Scanner, error) {
	excludes := make([]glob.Glob, 0, len(cfg.Exclude))
	for _, pattern := range cfg.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		excludes = append(excludes, g)
	}
	return &Scanner{
		cfg:      cfg,
		excludes: excludes,
		log:      log.New("scan"),
	}, nil
}

// Scan loads the configured packages and extracts every marker occurrence
// visible in this round.
func (s *Scanner) Scan() ([]registry.Occurrence, error) {
	loadCfg := &packages.Config{
		Mode: packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedSyntax | packages.NeedName |
			packages.NeedFiles | packages.NeedImports,
		Dir: s.cfg.Root,
	}

	pkgs, err := packages.Load(loadCfg, s.buildPatterns()...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var loadErrs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
	}
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(loadErrs, "\n  "))
	}
	if len(pkgs) == 0 {
		return nil, nil
	}

	s.fset = pkgs[0].Fset
	s.buildUniverse(pkgs)

	var occs []registry.Occurrence
	for _, pkg := range pkgs {
		if s.shouldExclude(pkg.PkgPath) {
			s.log.Debug().Str("package", pkg.PkgPath).Msg("excluded from scan")
			continue
		}
		occs = append(occs, s.extractOccurrences(pkg)...)
	}
	return occs, nil
}

// buildPatterns converts scan config paths to go/packages patterns.
func (s *Scanner) buildPatterns() []string {
	var patterns []string
	for _, p := range s.cfg.Scan {
		if !strings.HasPrefix(p, "./") && p != "." {
			p = "./" + p
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// shouldExclude matches a package path against the exclude globs, using
// the module-relative form.
func (s *Scanner) shouldExclude(pkgPath string) bool {
	rel := strings.TrimPrefix(pkgPath, s.cfg.Module+"/")
	for _, g := range s.excludes {
		if g.Match(rel) || g.Match(pkgPath) {
			return true
		}
	}
	return false
}

// buildUniverse indexes exported interface types and package names across
// all loaded packages and their imports.
func (s *Scanner) buildUniverse(pkgs []*packages.Package) {
	s.ifaceTypes = make(map[string]*types.Interface)
	s.pkgNameToPath = make(map[string]string)
	visited := make(map[string]bool)

	var walk func(pkg *packages.Package)
	walk = func(pkg *packages.Package) {
		if pkg.Types == nil || visited[pkg.PkgPath] {
			return
		}
		visited[pkg.PkgPath] = true
		s.pkgNameToPath[pkg.Name] = pkg.PkgPath

		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj := scope.Lookup(name)
			if !obj.Exported() {
				continue
			}
			if iface, ok := obj.Type().Underlying().(*types.Interface); ok {
				s.ifaceTypes[pkg.PkgPath+"."+name] = iface
			}
		}
		for _, imp := range pkg.Imports {
			walk(imp)
		}
	}

	for _, pkg := range pkgs {
		walk(pkg)
	}
}

// extractOccurrences walks a package's syntax for marked type
// declarations, both top-level and inside function bodies.
func (s *Scanner) extractOccurrences(pkg *packages.Package) []registry.Occurrence {
	var occs []registry.Occurrence

	for _, f := range pkg.Syntax {
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					if occ, ok := s.buildOccurrence(pkg, d, ts, registry.KindNamed); ok {
						occs = append(occs, occ)
					}
				}
			case *ast.FuncDecl:
				occs = append(occs, s.extractLocal(pkg, d)...)
			}
		}
	}
	return occs
}

// extractLocal finds marked type declarations inside a function body.
// These have no stable binary name; the registry rejects them, but the
// scanner still surfaces them so the rejection carries a real position.
func (s *Scanner) extractLocal(pkg *packages.Package, fn *ast.FuncDecl) []registry.Occurrence {
	if fn.Body == nil {
		return nil
	}

	var occs []registry.Occurrence
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		gd, ok := n.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			return true
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			if occ, ok := s.buildOccurrence(pkg, gd, ts, registry.KindLocal); ok {
				occ.Implementer.Outer = []string{fn.Name.Name}
				occs = append(occs, occ)
			}
		}
		return true
	})
	return occs
}

// buildOccurrence turns one marked type spec into a structured occurrence.
// Returns false when the declaration carries no service marker.
func (s *Scanner) buildOccurrence(pkg *packages.Package, gd *ast.GenDecl, ts *ast.TypeSpec, kind registry.Kind) (registry.Occurrence, bool) {
	doc := ts.Doc
	if doc == nil && len(gd.Specs) == 1 {
		doc = gd.Doc
	}

	markers := ParseMarkers(doc)
	if _, ignored := FindMarker(markers, MarkerIgnore); ignored {
		return registry.Occurrence{}, false
	}
	m, ok := FindMarker(markers, MarkerService)
	if !ok {
		return registry.Occurrence{}, false
	}

	pos := s.fset.Position(ts.Pos())

	occ := registry.Occurrence{
		Implementer: registry.QualifiedName{Package: pkg.PkgPath, Name: ts.Name.Name},
		Kind:        kind,
		Unit:        s.relUnit(pos.Filename),
		Pos:         pos.String(),
	}

	// A marker with no value at all keeps Interfaces nil; the registry
	// distinguishes that from an argument naming zero interfaces.
	if m.HasValue {
		refs := SplitInterfaceList(m.Value)
		occ.Interfaces = make([]registry.QualifiedName, 0, len(refs))
		for _, ref := range refs {
			occ.Interfaces = append(occ.Interfaces, s.resolveInterface(ref, pkg))
		}
	}

	if kind == registry.KindNamed {
		if obj := pkg.TypesInfo.Defs[ts.Name]; obj != nil {
			occ.Supertypes = s.closure(obj.Type())
		}
	}
	return occ, true
}

// resolveInterface maps a marker reference to a qualified name. Accepted
// forms: "Iface" (same package), "pkg.Iface" (resolved through loaded
// package names), and "example.com/path/pkg.Iface" (explicit import
// path). Generic instantiations reduce to the raw named type.
func (s *Scanner) resolveInterface(ref string, pkg *packages.Package) registry.QualifiedName {
	if idx := strings.Index(ref, "["); idx >= 0 {
		ref = ref[:idx]
	}

	if strings.Contains(ref, "/") {
		if dot := strings.LastIndex(ref, "."); dot > strings.LastIndex(ref, "/") {
			return registry.QualifiedName{Package: ref[:dot], Name: ref[dot+1:]}
		}
		return registry.QualifiedName{Package: ref}
	}

	if dot := strings.LastIndex(ref, "."); dot >= 0 {
		pkgName, name := ref[:dot], ref[dot+1:]
		if path, ok := s.pkgNameToPath[pkgName]; ok {
			return registry.QualifiedName{Package: path, Name: name}
		}
		// Unknown package name: keep the textual form; the implements
		// check reports it when verification is on.
		return registry.QualifiedName{Package: pkgName, Name: name}
	}

	return registry.QualifiedName{Package: pkg.PkgPath, Name: ref}
}

// closure computes the supertype closure of T as the set of binary names
// of every loaded exported interface satisfied by T or *T.
func (s *Scanner) closure(T types.Type) map[string]struct{} {
	out := make(map[string]struct{})
	ptr := types.NewPointer(T)
	for bin, iface := range s.ifaceTypes {
		if types.Implements(T, iface) || types.Implements(ptr, iface) {
			out[bin] = struct{}{}
		}
	}
	return out
}

// relUnit normalizes a source file path to a module-relative, slash-
// separated unit identity, so dependency sets are stable across machines.
func (s *Scanner) relUnit(filename string) string {
	rel, err := filepath.Rel(s.cfg.Root, filename)
	if err != nil {
		return filepath.ToSlash(filename)
	}
	return filepath.ToSlash(rel)
}
