/*
regel.go - Rules: named, versioned, pure functions over a grunnlag

PURPOSE:
  A Regel turns a grunnlag of type G into a Faktum[T] for one evaluation
  sub-period. Rules are defined once, carry the date they are legally valid
  from, and are composed into trees with the combinators in kombinator.go.

PURITY:
  Anvend must be side-effect free and return the same value for the same
  grunnlag and period. The engine evaluates a rule once per sub-period and
  relies on this.

TREE:
  Every rule knows the rules it was built from (Underregler). The engine
  walks this tree to find rules whose GyldigFra is after the requested
  window. Rules hold no grunnlag state, so knekkpunkter are collected from
  the grunnlag, never from the tree.

SEE ALSO:
  - kombinator.go: Derived rules
  - motor.go: Evaluation across a window
*/
package regler

import (
	"errors"
	"fmt"
)

// RegelMeta identifies a rule for audit purposes.
type RegelMeta struct {
	ID          string
	Beskrivelse string
	Versjon     string
	GyldigFra   Dato
}

// RegelNode is the type-erased view of a rule used for tree traversal.
type RegelNode interface {
	Meta() RegelMeta
	Underregler() []RegelNode
}

// AnvendFunc computes a rule's value for one sub-period.
type AnvendFunc[G, T any] func(grunnlag G, periode RegelPeriode) (Faktum[T], error)

// Regel is an immutable rule definition.
type Regel[G, T any] struct {
	meta        RegelMeta
	underregler []RegelNode
	anvend      AnvendFunc[G, T]
}

// Definer returns a rule computed by fn. The returned fact is stamped with
// the rule's identity unless fn already set a Kilde. underregler lists the
// rules fn evaluates, for the validity check.
func Definer[G, T any](meta RegelMeta, fn AnvendFunc[G, T], underregler ...RegelNode) *Regel[G, T] {
	return &Regel[G, T]{meta: meta, underregler: underregler, anvend: fn}
}

func (r *Regel[G, T]) Meta() RegelMeta { return r.meta }

func (r *Regel[G, T]) ID() string { return r.meta.ID }

func (r *Regel[G, T]) Underregler() []RegelNode {
	out := make([]RegelNode, len(r.underregler))
	copy(out, r.underregler)
	return out
}

// Anvend evaluates the rule for periode. Errors are wrapped with the rule ID.
func (r *Regel[G, T]) Anvend(grunnlag G, periode RegelPeriode) (Faktum[T], error) {
	if r == nil || r.anvend == nil {
		return Faktum[T]{}, errors.New("rule has no definition")
	}
	f, err := r.anvend(grunnlag, periode)
	if err != nil {
		var regelErr *RegelFeil
		if errors.As(err, &regelErr) {
			return Faktum[T]{}, err
		}
		return Faktum[T]{}, &RegelFeil{RegelID: r.meta.ID, Periode: periode, Err: err}
	}
	if f.Kilde == "" {
		f.Kilde = r.meta.ID
		f.Beskrivelse = r.meta.Beskrivelse
		f.GyldigFra = r.meta.GyldigFra
	}
	return f, nil
}

// utled stamps a derived value with the rule's identity and its inputs.
func (r *Regel[G, T]) utled(verdi T, underliggende ...Spor) Faktum[T] {
	return Faktum[T]{
		Verdi:         verdi,
		Kilde:         r.meta.ID,
		Beskrivelse:   r.meta.Beskrivelse,
		GyldigFra:     r.meta.GyldigFra,
		Underliggende: underliggende,
	}
}

// RegelFeil is an unexpected failure while applying a rule. It aborts the
// evaluation; it is not a business outcome.
type RegelFeil struct {
	RegelID string
	Periode RegelPeriode
	Err     error
}

func (e *RegelFeil) Error() string {
	return fmt.Sprintf("rule %s failed for %s: %v", e.RegelID, e.Periode, e.Err)
}

func (e *RegelFeil) Unwrap() error { return e.Err }

// =============================================================================
// TREE TRAVERSAL
// =============================================================================

// UgyldigeRegler returns the IDs of rules in the tree whose GyldigFra is after
// fom, in depth-first order without duplicates.
func UgyldigeRegler(rot RegelNode, fom Dato) []string {
	sett := make(map[string]bool)
	var ider []string
	Besok(rot, func(n RegelNode) {
		meta := n.Meta()
		if meta.GyldigFra.After(fom) && !sett[meta.ID] {
			sett[meta.ID] = true
			ider = append(ider, meta.ID)
		}
	})
	return ider
}

// Besok visits every node in the tree depth first, parents before children.
func Besok(rot RegelNode, fn func(RegelNode)) {
	if rot == nil {
		return
	}
	fn(rot)
	for _, u := range rot.Underregler() {
		Besok(u, fn)
	}
}
