package regler

import "errors"

// =============================================================================
// LEAF RULES - Facts read straight from the grunnlag
// =============================================================================

// Konstant returns a rule that always produces verdi.
func Konstant[G, T any](meta RegelMeta, verdi T) *Regel[G, T] {
	r := &Regel[G, T]{meta: meta}
	r.anvend = func(G, RegelPeriode) (Faktum[T], error) {
		return r.utled(verdi), nil
	}
	return r
}

// FraFelt wraps a plain grunnlag field as a zero-dependency rule. The fact's
// provenance is the field itself: kilde and the rule description.
func FraFelt[G, T any](meta RegelMeta, kilde string, hent func(G) T) *Regel[G, T] {
	return Definer(meta, func(g G, _ RegelPeriode) (Faktum[T], error) {
		return Faktum[T]{
			Verdi:       hent(g),
			Kilde:       kilde,
			Beskrivelse: meta.Beskrivelse,
			GyldigFra:   meta.GyldigFra,
		}, nil
	})
}

// FraGrunnlag wraps a periodized or constant grunnlag field as a rule. The
// field is read at the start of the evaluated sub-period; within a sub-period
// every source is constant, so any date inside it gives the same value. The
// stored fact is returned unchanged and keeps its own provenance.
func FraGrunnlag[G, T any](meta RegelMeta, hent func(G) Kilde[Faktum[T]]) *Regel[G, T] {
	return Definer(meta, func(g G, periode RegelPeriode) (Faktum[T], error) {
		kilde := hent(g)
		if kilde == nil {
			return Faktum[T]{}, errors.New("grunnlag field is nil")
		}
		return kilde.VerdiPaaDato(periode.Fom)
	})
}

// =============================================================================
// COMBINATORS - New rules from existing ones
// =============================================================================

// Benytter derives a value from a single rule.
func Benytter[G, A, T any](meta RegelMeta, a *Regel[G, A], fn func(A) T) *Regel[G, T] {
	r := &Regel[G, T]{meta: meta, underregler: []RegelNode{a}}
	r.anvend = func(g G, periode RegelPeriode) (Faktum[T], error) {
		fa, err := a.Anvend(g, periode)
		if err != nil {
			return Faktum[T]{}, err
		}
		return r.utled(fn(fa.Verdi), fa.Spor()), nil
	}
	return r
}

// Kombiner combines the outputs of two rules. The result's provenance keeps
// both inputs.
func Kombiner[G, A, B, T any](meta RegelMeta, a *Regel[G, A], b *Regel[G, B], fn func(A, B) T) *Regel[G, T] {
	r := &Regel[G, T]{meta: meta, underregler: []RegelNode{a, b}}
	r.anvend = func(g G, periode RegelPeriode) (Faktum[T], error) {
		fa, err := a.Anvend(g, periode)
		if err != nil {
			return Faktum[T]{}, err
		}
		fb, err := b.Anvend(g, periode)
		if err != nil {
			return Faktum[T]{}, err
		}
		return r.utled(fn(fa.Verdi, fb.Verdi), fa.Spor(), fb.Spor()), nil
	}
	return r
}

// Kombiner3 combines the outputs of three rules.
func Kombiner3[G, A, B, C, T any](meta RegelMeta, a *Regel[G, A], b *Regel[G, B], c *Regel[G, C], fn func(A, B, C) T) *Regel[G, T] {
	r := &Regel[G, T]{meta: meta, underregler: []RegelNode{a, b, c}}
	r.anvend = func(g G, periode RegelPeriode) (Faktum[T], error) {
		fa, err := a.Anvend(g, periode)
		if err != nil {
			return Faktum[T]{}, err
		}
		fb, err := b.Anvend(g, periode)
		if err != nil {
			return Faktum[T]{}, err
		}
		fc, err := c.Anvend(g, periode)
		if err != nil {
			return Faktum[T]{}, err
		}
		return r.utled(fn(fa.Verdi, fb.Verdi, fc.Verdi), fa.Spor(), fb.Spor(), fc.Spor()), nil
	}
	return r
}

// Fold combines any number of rules of the same type by folding Kombiner
// left to right. A single rule is wrapped with Benytter so the result always
// carries meta. Fold panics on an empty list.
func Fold[G, T any](meta RegelMeta, regler []*Regel[G, T], fn func(T, T) T) *Regel[G, T] {
	if len(regler) == 0 {
		panic("regler: Fold needs at least one rule")
	}
	if len(regler) == 1 {
		return Benytter(meta, regler[0], func(v T) T { return v })
	}
	acc := Kombiner(meta, regler[0], regler[1], fn)
	for _, neste := range regler[2:] {
		acc = Kombiner(meta, acc, neste, fn)
	}
	return acc
}
