/*
validering.go - Period validator

PURPOSE:
  Pure checks over sorted period lists, and the two constructors that turn a
  caller-supplied list into a PeriodisertGrunnlag. Validation happens here,
  at grunnlag-construction time, so the engine can assume valid sources.

CHECKS:
  ValidateNoOverlap:    adjacent periods never share a date; only the last
                        period may be open-ended
  ValidateNoGaps:       adjacent periods are contiguous (tom + 1 == next fom)
  ValidateFullCoverage: every date in [fom, tom] is covered

CONSTRUCTORS:
  BuildComplete:    rejects empty, overlapping and incomplete lists
  BuildWithDefault: rejects empty and overlapping lists, synthesizes values
                    for uncovered dates with a caller-supplied function

EXAMPLE:
  perioder := []regler.Periode[int]{
      {Data: 1, Fom: jan1, Tom: mar31.Ptr()},
      {Data: 2, Fom: apr1},
  }
  grunnlag, err := regler.BuildComplete(perioder, feb1, may31)
*/
package regler

import "sort"

// =============================================================================
// CHECKS - All expect periods sorted ascending by Fom
// =============================================================================

// ValidateNoOverlap returns true if, for every adjacent pair, the earlier
// period has a Tom strictly before the later period's Fom.
func ValidateNoOverlap[T any](perioder []Periode[T]) bool {
	for i := 1; i < len(perioder); i++ {
		forrige, neste := perioder[i-1], perioder[i]
		if forrige.Tom == nil || !forrige.Tom.Before(neste.Fom) {
			return false
		}
	}
	return true
}

// ValidateNoGaps returns true if every adjacent pair is contiguous.
func ValidateNoGaps[T any](perioder []Periode[T]) bool {
	for i := 1; i < len(perioder); i++ {
		forrige, neste := perioder[i-1], perioder[i]
		if forrige.Tom == nil || !forrige.Tom.AddDays(1).Equal(neste.Fom) {
			return false
		}
	}
	return true
}

// ValidateFullCoverage returns true if the periods cover every date in
// [fom, tom]. The window opens with the last period starting on or before
// fom. Periods starting after tom do not affect the result.
func ValidateFullCoverage[T any](perioder []Periode[T], fom, tom Dato) bool {
	forste := -1
	for i, p := range perioder {
		if p.Fom.After(fom) {
			break
		}
		forste = i
	}
	if forste < 0 {
		return false
	}

	siste := forste
	for i := forste + 1; i < len(perioder); i++ {
		if perioder[i].Fom.After(tom) {
			break
		}
		siste = i
	}

	if !ValidateNoGaps(perioder[forste : siste+1]) {
		return false
	}
	sistePeriode := perioder[siste]
	return sistePeriode.Tom == nil || tom.BeforeOrEqual(*sistePeriode.Tom)
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// StandardverdiFunc synthesizes a value for a date no period covers.
// tidligsteFom is the first period's Fom; senesteTom is nil when the last
// period is open-ended.
type StandardverdiFunc[T any] func(dato, tidligsteFom Dato, senesteTom *Dato) T

// BuildComplete returns a source covering every date in [fom, tom], or fails
// with ErrNoPeriods, ErrOverlappingPeriods or ErrIncompletePeriods.
func BuildComplete[T any](perioder []Periode[T], fom, tom Dato) (*PeriodisertGrunnlag[T], error) {
	if tom.Before(fom) {
		return nil, &UgyldigPeriodeError{Fom: fom, Tom: tom}
	}
	sortert, err := sorterOgValider(perioder)
	if err != nil {
		return nil, err
	}
	if !ValidateFullCoverage(sortert, fom, tom) {
		return nil, &PeriodiseringFeil{Feil: ErrIncompletePeriods, Antall: len(perioder), Fom: fom, Tom: tom}
	}
	return &PeriodisertGrunnlag[T]{perioder: sortert}, nil
}

// BuildWithDefault returns a source that never fails on coverage: dates no
// period covers are resolved with standardverdi.
func BuildWithDefault[T any](perioder []Periode[T], standardverdi StandardverdiFunc[T]) (*PeriodisertGrunnlag[T], error) {
	sortert, err := sorterOgValider(perioder)
	if err != nil {
		return nil, err
	}
	return &PeriodisertGrunnlag[T]{perioder: sortert, standardverdi: standardverdi}, nil
}

// sorterOgValider copies, validates and sorts the input, then checks overlap.
func sorterOgValider[T any](perioder []Periode[T]) ([]Periode[T], error) {
	if len(perioder) == 0 {
		return nil, &PeriodiseringFeil{Feil: ErrNoPeriods}
	}

	sortert := make([]Periode[T], len(perioder))
	copy(sortert, perioder)
	for _, p := range sortert {
		if err := p.Valider(); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(sortert, func(i, j int) bool {
		return sortert[i].Fom.Before(sortert[j].Fom)
	})

	if !ValidateNoOverlap(sortert) {
		return nil, &PeriodiseringFeil{Feil: ErrOverlappingPeriods, Antall: len(perioder)}
	}
	return sortert, nil
}
