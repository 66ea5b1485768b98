package registry

import "github.com/rs/zerolog"

// Collect walks every marker occurrence visible in the current round,
// validates it, and accumulates entries into g. It either processes all
// occurrences or fails on the first invalid one, leaving nothing emitted
// for the round.
//
// An implementer declaring N interfaces produces N grouping entries, each
// independently subject to the implements check.
func Collect(occs []Occurrence, opts Options, g *Grouping, log zerolog.Logger) error {
	for i := range occs {
		if err := collectOne(&occs[i], opts, g, log); err != nil {
			return err
		}
	}
	return nil
}

func collectOne(occ *Occurrence, opts Options, g *Grouping, log zerolog.Logger) error {
	if occ.Interfaces == nil {
		return &MissingArgumentError{Implementer: occ.Implementer, Pos: occ.Pos}
	}
	if len(occ.Interfaces) == 0 {
		return &EmptyInterfaceSetError{Implementer: occ.Implementer, Pos: occ.Pos}
	}
	if occ.Kind != KindNamed {
		return &UnsupportedDeclarationError{Implementer: occ.Implementer, Kind: occ.Kind, Pos: occ.Pos}
	}

	impl := occ.Implementer.Binary()

	for _, iface := range occ.Interfaces {
		key := iface.Binary()

		// The supertype closure is keyed by binary name, so nested and
		// parameterized references reduce to the same raw identity used
		// as the manifest key.
		if opts.Verify {
			if _, ok := occ.Supertypes[key]; !ok {
				return &NotAnImplementerError{
					Implementer: occ.Implementer,
					Interface:   iface,
					Pos:         occ.Pos,
				}
			}
		}

		g.add(key, impl, occ.Unit)

		if opts.Verbose {
			log.Debug().
				Str("interface", key).
				Str("implementer", impl).
				Str("unit", occ.Unit).
				Msg("registered service implementer")
		}
	}
	return nil
}
