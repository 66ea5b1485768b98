package registry

import "fmt"

// All collection and emission errors are fatal at round granularity: the
// first one aborts the round and no manifest is written. A partially
// correct manifest would silently break runtime service lookup, which is
// strictly worse than a failed build.

// MissingArgumentError reports a marker whose interface argument is
// absent entirely.
type MissingArgumentError struct {
	Implementer QualifiedName
	Pos         string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: marker on %s has no interface argument", e.Pos, e.Implementer)
}

// EmptyInterfaceSetError reports a marker whose interface argument names
// no interfaces. A registered type must declare at least one.
type EmptyInterfaceSetError struct {
	Implementer QualifiedName
	Pos         string
}

func (e *EmptyInterfaceSetError) Error() string {
	return fmt.Sprintf("%s: marker on %s declares an empty interface set", e.Pos, e.Implementer)
}

// NotAnImplementerError reports a declared interface that is not in the
// implementer's supertype closure. Raised only when verification is on.
type NotAnImplementerError struct {
	Implementer QualifiedName
	Interface   QualifiedName
	Pos         string
}

func (e *NotAnImplementerError) Error() string {
	return fmt.Sprintf("%s: %s does not implement declared service interface %s",
		e.Pos, e.Implementer, e.Interface)
}

// UnsupportedDeclarationError reports a local or anonymous implementer.
// Such declarations have no stable binary name usable as a manifest entry.
type UnsupportedDeclarationError struct {
	Implementer QualifiedName
	Kind        Kind
	Pos         string
}

func (e *UnsupportedDeclarationError) Error() string {
	return fmt.Sprintf("%s: %s declaration %s cannot be registered as a service implementer",
		e.Pos, e.Kind, e.Implementer)
}

// WriteError reports an I/O failure while emitting a manifest.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write manifest %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// PhaseError reports a Round method invoked out of order.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s called in phase %s", e.Op, e.Phase)
}
