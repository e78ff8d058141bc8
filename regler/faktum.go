package regler

// =============================================================================
// FAKTUM - A value with provenance, the atomic unit of computation
// =============================================================================

// Faktum is an immutable value annotated with where it came from. Leaf facts
// are supplied by the caller in a grunnlag; every rule produces a new Faktum
// whose Underliggende holds the provenance of its inputs.
type Faktum[T any] struct {
	Verdi       T
	Kilde       string // source system for leaves, rule ID for derived facts
	Beskrivelse string
	GyldigFra   Dato // zero when unknown

	Underliggende []Spor
}

// NyttFaktum returns a leaf fact.
func NyttFaktum[T any](verdi T, kilde, beskrivelse string) Faktum[T] {
	return Faktum[T]{Verdi: verdi, Kilde: kilde, Beskrivelse: beskrivelse}
}

// Spor returns the untyped provenance tree rooted at f.
func (f Faktum[T]) Spor() Spor {
	return Spor{
		Kilde:         f.Kilde,
		Beskrivelse:   f.Beskrivelse,
		GyldigFra:     f.GyldigFra,
		Verdi:         f.Verdi,
		Underliggende: f.Underliggende,
	}
}

// Spor is one node of a provenance trace. It is the untyped form of a Faktum
// and is what gets stored and rendered.
type Spor struct {
	Kilde         string `json:"kilde"`
	Beskrivelse   string `json:"beskrivelse"`
	GyldigFra     Dato   `json:"gyldig_fra,omitzero"`
	Verdi         any    `json:"verdi"`
	Underliggende []Spor `json:"underliggende,omitempty"`
}

// Kilder returns the distinct sources of every node in the trace, depth first.
func (s Spor) Kilder() []string {
	sett := make(map[string]bool)
	var out []string
	var visit func(Spor)
	visit = func(n Spor) {
		if n.Kilde != "" && !sett[n.Kilde] {
			sett[n.Kilde] = true
			out = append(out, n.Kilde)
		}
		for _, u := range n.Underliggende {
			visit(u)
		}
	}
	visit(s)
	return out
}
