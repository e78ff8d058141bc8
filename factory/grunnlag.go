package factory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// GrunnlagJSON maps field names to their values.
//
//	{
//	  "antall_soesken": {
//	    "kilde": "folkeregister",
//	    "perioder": [
//	      {"fom": "2023-01-01", "tom": "2023-08-31", "verdi": 1},
//	      {"fom": "2023-09-01", "verdi": 2}
//	    ]
//	  },
//	  "trygdetid": {"konstant": 40}
//	}
type GrunnlagJSON map[string]FeltJSON

// FeltJSON is one grunnlag field. Exactly one of Konstant and Perioder is
// set. Standardverdi is used for dates outside the periods; without it the
// periods must cover the whole evaluation window.
type FeltJSON struct {
	Kilde         string        `json:"kilde,omitempty"`
	Beskrivelse   string        `json:"beskrivelse,omitempty"`
	Konstant      any           `json:"konstant,omitempty"`
	Standardverdi any           `json:"standardverdi,omitempty"`
	Perioder      []PeriodeJSON `json:"perioder,omitempty"`
}

// PeriodeJSON is a value valid from Fom to Tom, both inclusive. A missing
// Tom is open-ended.
type PeriodeJSON struct {
	Fom   regler.Dato  `json:"fom"`
	Tom   *regler.Dato `json:"tom,omitempty"`
	Verdi any          `json:"verdi"`
}

// ParseGrunnlag parses a JSON grunnlag definition.
func ParseGrunnlag(jsonStr string) (GrunnlagJSON, error) {
	var g GrunnlagJSON
	if err := json.Unmarshal([]byte(jsonStr), &g); err != nil {
		return nil, fmt.Errorf("failed to parse grunnlag JSON: %w", err)
	}
	return g, nil
}

// =============================================================================
// DYNAMISK GRUNNLAG
// =============================================================================

// DynamiskGrunnlag is a grunnlag whose fields are only known at runtime. It
// is what rules built from JSON are evaluated against.
type DynamiskGrunnlag struct {
	felter map[string]regler.Kilde[regler.Faktum[any]]
}

var _ regler.KnekkpunktKilde = (*DynamiskGrunnlag)(nil)

// Felt returns the named field.
func (g *DynamiskGrunnlag) Felt(navn string) (regler.Kilde[regler.Faktum[any]], bool) {
	if g == nil {
		return nil, false
	}
	k, ok := g.felter[navn]
	return k, ok
}

// Felter returns the field names, sorted.
func (g *DynamiskGrunnlag) Felter() []string {
	if g == nil {
		return nil
	}
	navn := make([]string, 0, len(g.felter))
	for n := range g.felter {
		navn = append(navn, n)
	}
	sort.Strings(navn)
	return navn
}

func (g *DynamiskGrunnlag) Knekkpunkter() []regler.Dato {
	if g == nil {
		return nil
	}
	kilder := make([]regler.KnekkpunktKilde, 0, len(g.felter))
	for _, k := range g.felter {
		kilder = append(kilder, k)
	}
	return regler.Knekkpunkter(kilder...)
}

// ByggGrunnlag validates every field against periode and builds the
// grunnlag. Period validator errors are returned wrapped with the field name.
func ByggGrunnlag(felter GrunnlagJSON, periode regler.RegelPeriode) (*DynamiskGrunnlag, error) {
	g := &DynamiskGrunnlag{felter: make(map[string]regler.Kilde[regler.Faktum[any]], len(felter))}
	for navn, felt := range felter {
		if err := validateIdentifier(navn); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUgyldigGrunnlag, err)
		}
		k, err := byggFelt(navn, felt, periode)
		if err != nil {
			return nil, fmt.Errorf("grunnlag field %q: %w", navn, err)
		}
		g.felter[navn] = k
	}
	return g, nil
}

func byggFelt(navn string, felt FeltJSON, periode regler.RegelPeriode) (regler.Kilde[regler.Faktum[any]], error) {
	kilde := felt.Kilde
	if kilde == "" {
		kilde = "grunnlag." + navn
	}

	if felt.Konstant != nil {
		if len(felt.Perioder) > 0 {
			return nil, fmt.Errorf("%w: both konstant and perioder set", ErrUgyldigGrunnlag)
		}
		return regler.NyKonstantGrunnlag(regler.NyttFaktum(felt.Konstant, kilde, felt.Beskrivelse)), nil
	}

	perioder := make([]regler.Periode[regler.Faktum[any]], len(felt.Perioder))
	for i, p := range felt.Perioder {
		f := regler.NyttFaktum(p.Verdi, kilde, felt.Beskrivelse)
		f.GyldigFra = p.Fom
		perioder[i] = regler.Periode[regler.Faktum[any]]{Data: f, Fom: p.Fom, Tom: p.Tom}
	}

	if felt.Standardverdi != nil {
		standard := regler.NyttFaktum(felt.Standardverdi, kilde, "Standardverdi")
		if len(perioder) == 0 {
			return regler.NyKonstantGrunnlag(standard), nil
		}
		return regler.BuildWithDefault(perioder, func(regler.Dato, regler.Dato, *regler.Dato) regler.Faktum[any] {
			return standard
		})
	}
	return regler.BuildComplete(perioder, periode.Fom, periode.Tom)
}
