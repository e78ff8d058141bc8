package regler

import "sort"

// =============================================================================
// KNEKKPUNKT SOURCES - What the engine needs from a grunnlag
// =============================================================================

// KnekkpunktKilde is implemented by every periodized field type, and by every
// grunnlag: a grunnlag returns the union of its fields' knekkpunkter.
type KnekkpunktKilde interface {
	// Knekkpunkter returns the sorted dates at which the value may change.
	Knekkpunkter() []Dato
}

// Kilde is a field whose value depends on the date it is read at.
type Kilde[T any] interface {
	KnekkpunktKilde
	VerdiPaaDato(d Dato) (T, error)
}

// Knekkpunkter unions the knekkpunkter of kilder, sorted ascending.
// Nil sources are skipped so optional grunnlag fields can be passed as is.
func Knekkpunkter(kilder ...KnekkpunktKilde) []Dato {
	sett := make(map[Dato]struct{})
	for _, k := range kilder {
		if k == nil {
			continue
		}
		for _, d := range k.Knekkpunkter() {
			sett[d] = struct{}{}
		}
	}
	return sorterteDatoer(sett)
}

func sorterteDatoer(sett map[Dato]struct{}) []Dato {
	datoer := make([]Dato, 0, len(sett))
	for d := range sett {
		datoer = append(datoer, d)
	}
	sort.Slice(datoer, func(i, j int) bool { return datoer[i].Before(datoer[j]) })
	return datoer
}

// =============================================================================
// PERIODISERT GRUNNLAG - Validated, read-only view over sorted periods
// =============================================================================

// PeriodisertGrunnlag is built by BuildComplete or BuildWithDefault. Its
// periods are sorted by Fom and never overlap.
type PeriodisertGrunnlag[T any] struct {
	perioder      []Periode[T]
	standardverdi StandardverdiFunc[T]
}

// Perioder returns a copy of the underlying periods.
func (pg *PeriodisertGrunnlag[T]) Perioder() []Periode[T] {
	out := make([]Periode[T], len(pg.perioder))
	copy(out, pg.perioder)
	return out
}

// Knekkpunkter returns every Fom, plus Tom + 1 day for every closed period.
func (pg *PeriodisertGrunnlag[T]) Knekkpunkter() []Dato {
	if pg == nil {
		return nil
	}
	sett := make(map[Dato]struct{}, 2*len(pg.perioder))
	for _, p := range pg.perioder {
		sett[p.Fom] = struct{}{}
		if p.Tom != nil {
			sett[p.Tom.AddDays(1)] = struct{}{}
		}
	}
	return sorterteDatoer(sett)
}

// VerdiPaaDato returns the data of the period containing d. Uncovered dates
// use the default function if one was supplied, otherwise fail with
// DatoUtenforPerioderError.
func (pg *PeriodisertGrunnlag[T]) VerdiPaaDato(d Dato) (T, error) {
	if pg == nil {
		var zero T
		return zero, &DatoUtenforPerioderError{Dato: d}
	}
	// First period starting after d; the candidate is the one before it.
	i := sort.Search(len(pg.perioder), func(i int) bool {
		return pg.perioder[i].Fom.After(d)
	})
	if i > 0 && pg.perioder[i-1].Inneholder(d) {
		return pg.perioder[i-1].Data, nil
	}

	if pg.standardverdi != nil {
		return pg.standardverdi(d, pg.tidligsteFom(), pg.senesteTom()), nil
	}
	var zero T
	return zero, &DatoUtenforPerioderError{Dato: d}
}

func (pg *PeriodisertGrunnlag[T]) tidligsteFom() Dato {
	return pg.perioder[0].Fom
}

func (pg *PeriodisertGrunnlag[T]) senesteTom() *Dato {
	siste := pg.perioder[len(pg.perioder)-1]
	if siste.Tom == nil {
		return nil
	}
	tom := *siste.Tom
	return &tom
}

// =============================================================================
// KONSTANT GRUNNLAG - A plain value posing as a periodized field
// =============================================================================

// KonstantGrunnlag is a single infinite period. It contributes no
// knekkpunkter, so non-temporal inputs need no special casing in the engine.
type KonstantGrunnlag[T any] struct {
	Verdi T
}

// NyKonstantGrunnlag wraps verdi.
func NyKonstantGrunnlag[T any](verdi T) KonstantGrunnlag[T] {
	return KonstantGrunnlag[T]{Verdi: verdi}
}

func (k KonstantGrunnlag[T]) Knekkpunkter() []Dato { return nil }

func (k KonstantGrunnlag[T]) VerdiPaaDato(Dato) (T, error) { return k.Verdi, nil }
