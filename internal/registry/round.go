package registry

import (
	"github.com/rs/zerolog"

	"autosvc/pkg/log"
)

// Phase tracks where a Round is in its lifecycle.
type Phase int

const (
	PhaseConfigured Phase = iota
	PhaseCollecting
	PhaseEmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseConfigured:
		return "configured"
	case PhaseCollecting:
		return "collecting"
	case PhaseEmitted:
		return "emitted"
	}
	return "unknown"
}

// Round is the thin lifecycle adapter over the pure Collect and Emit
// functions: Configured → Collecting → Emitted, one pass each. It owns
// the round-scoped Grouping; nothing survives Emit.
type Round struct {
	opts     Options
	phase    Phase
	failed   bool
	grouping *Grouping
	log      zerolog.Logger
}

// NewRound creates a round in the Configured phase.
func NewRound(opts Options) *Round {
	return &Round{
		opts:     opts,
		phase:    PhaseConfigured,
		grouping: NewGrouping(),
		log:      log.New("registry"),
	}
}

// Collect validates and groups the round's occurrences. It may be called
// multiple times while collecting (one call per batch of visible
// occurrences), but never after Emit.
func (r *Round) Collect(occs []Occurrence) error {
	if r.phase == PhaseEmitted || r.failed {
		return &PhaseError{Op: "Collect", Phase: r.phase}
	}
	r.phase = PhaseCollecting
	if err := Collect(occs, r.opts, r.grouping, r.log); err != nil {
		r.failed = true
		return err
	}
	return nil
}

// Emit writes one manifest per collected interface key and moves the
// round to its terminal phase. The grouping is consumed; a subsequent
// Collect or Emit is a phase error. A round whose collection failed
// refuses to emit: the abort is atomic and nothing is written.
func (r *Round) Emit(store Store) ([]Artifact, error) {
	if r.phase == PhaseEmitted || r.failed {
		return nil, &PhaseError{Op: "Emit", Phase: r.phase}
	}
	r.phase = PhaseEmitted
	return Emit(r.grouping, store, r.log)
}

// Grouping exposes the round's accumulator for inspection before Emit.
func (r *Round) Grouping() *Grouping { return r.grouping }

// CurrentPhase reports the round's lifecycle phase.
func (r *Round) CurrentPhase() Phase { return r.phase }
