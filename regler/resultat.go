package regler

import "time"

// =============================================================================
// RESULTAT - Tagged union returned by Kjoer
// =============================================================================

// Resultat is either *Beregnet or *UgyldigPeriode. The interface is sealed;
// use Match to handle both outcomes.
type Resultat[T any] interface {
	resultat(T)
}

// Beregnet is a successful evaluation: one result per sub-period, ordered
// by Fom, together covering the requested window.
type Beregnet[T any] struct {
	Perioder []PeriodisertResultat[T]
}

// PeriodisertResultat is the fact computed for one sub-period.
type PeriodisertResultat[T any] struct {
	Periode      RegelPeriode
	Resultat     Faktum[T]
	Evaluert     time.Time
	RegelVersjon string
}

// UgyldigPeriode means the window starts before one or more rules in the
// evaluated tree are valid. It is an expected outcome, not an error.
type UgyldigPeriode[T any] struct {
	Periode   RegelPeriode
	RegelIDer []string
}

func (*Beregnet[T]) resultat(T)       {}
func (*UgyldigPeriode[T]) resultat(T) {}

// Match calls exactly one of the handlers. Both must be supplied, so adding
// a handler for a new outcome is enforced by the compiler at every call site.
func Match[T, R any](res Resultat[T], beregnet func(*Beregnet[T]) R, ugyldig func(*UgyldigPeriode[T]) R) R {
	switch r := res.(type) {
	case *Beregnet[T]:
		return beregnet(r)
	case *UgyldigPeriode[T]:
		return ugyldig(r)
	default:
		panic("regler: unknown result type")
	}
}

// Verdier returns the computed values in period order.
func (b *Beregnet[T]) Verdier() []T {
	out := make([]T, len(b.Perioder))
	for i, p := range b.Perioder {
		out[i] = p.Resultat.Verdi
	}
	return out
}

// VerdiPaaDato returns the value computed for the sub-period containing d.
func (b *Beregnet[T]) VerdiPaaDato(d Dato) (T, bool) {
	for _, p := range b.Perioder {
		if p.Periode.Inneholder(d) {
			return p.Resultat.Verdi, true
		}
	}
	var zero T
	return zero, false
}

// SomPerioder turns the result into periods so it can feed another
// evaluation's grunnlag.
func (b *Beregnet[T]) SomPerioder() []Periode[Faktum[T]] {
	out := make([]Periode[Faktum[T]], len(b.Perioder))
	for i, p := range b.Perioder {
		out[i] = Periode[Faktum[T]]{Data: p.Resultat, Fom: p.Periode.Fom, Tom: p.Periode.Tom.Ptr()}
	}
	return out
}

// Spor returns the untyped results, suitable for storage.
func (b *Beregnet[T]) Spor() []PeriodisertSpor {
	out := make([]PeriodisertSpor, len(b.Perioder))
	for i, p := range b.Perioder {
		out[i] = PeriodisertSpor{
			Periode:      p.Periode,
			Spor:         p.Resultat.Spor(),
			Evaluert:     p.Evaluert,
			RegelVersjon: p.RegelVersjon,
		}
	}
	return out
}

// PeriodisertSpor is the untyped form of PeriodisertResultat.
type PeriodisertSpor struct {
	Periode      RegelPeriode `json:"periode"`
	Spor         Spor         `json:"resultat"`
	Evaluert     time.Time    `json:"evaluert"`
	RegelVersjon string       `json:"regel_versjon,omitempty"`
}

// =============================================================================
// MERGING - Presenting results without redundant slices
// =============================================================================

// SlaaSammen merges adjacent sub-periods whose values are equal according to
// lik. The merged period keeps the first slice's fact. Engine output is
// contiguous; non-adjacent slices are never merged.
func SlaaSammen[T any](perioder []PeriodisertResultat[T], lik func(a, b T) bool) []PeriodisertResultat[T] {
	if len(perioder) == 0 {
		return nil
	}
	out := []PeriodisertResultat[T]{perioder[0]}
	for _, p := range perioder[1:] {
		siste := &out[len(out)-1]
		sammenhengende := siste.Periode.Tom.AddDays(1).Equal(p.Periode.Fom)
		if sammenhengende && lik(siste.Resultat.Verdi, p.Resultat.Verdi) {
			siste.Periode.Tom = p.Periode.Tom
			continue
		}
		out = append(out, p)
	}
	return out
}
