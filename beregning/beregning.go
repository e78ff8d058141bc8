/*
Package beregning computes the monthly children's pension with the rule engine.

PURPOSE:
  The yearly amount depends on the grunnbeløp (G), the number of siblings
  sharing the pension, and the trygdetid. Each of these changes at its own
  dates; the engine evaluates the rule tree once per sub-period between
  those dates.

RULESETS:
  Regelverk 2021 (GyldigFra 2021-01-01):
    yearly = (0.40 G + 0.25 G * siblings) / (siblings + 1) * min(trygdetid, 40) / 40

  Regelverk 2024 (GyldigFra 2024-01-01):
    yearly = 1 G * min(trygdetid, 40) / 40

  Monthly amounts are yearly / 12. Rounding is left to the caller.

SEE ALSO:
  - trygdetid/: Produces the trygdetid input
*/
package beregning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/trygdetid"
)

var (
	Regelverk2021 = regler.NyDato(2021, 1, 1)
	Regelverk2024 = regler.NyDato(2024, 1, 1)
)

const kildeGrunnbeloep = "grunnbeloep"

// =============================================================================
// GRUNNBELØP
// =============================================================================

type grunnbeloep struct {
	fom    regler.Dato
	beloep int64
}

var grunnbeloepHistorikk = []grunnbeloep{
	{regler.NyDato(2020, 5, 1), 101351},
	{regler.NyDato(2021, 5, 1), 106399},
	{regler.NyDato(2022, 5, 1), 111477},
	{regler.NyDato(2023, 5, 1), 118620},
	{regler.NyDato(2024, 5, 1), 124028},
}

// Grunnbeloep returns the known G values as contiguous periods. The last one
// is open-ended.
func Grunnbeloep() []regler.Periode[regler.Faktum[decimal.Decimal]] {
	out := make([]regler.Periode[regler.Faktum[decimal.Decimal]], len(grunnbeloepHistorikk))
	for i, g := range grunnbeloepHistorikk {
		f := regler.NyttFaktum(decimal.NewFromInt(g.beloep), kildeGrunnbeloep, fmt.Sprintf("Grunnbeløp fra %s", g.fom))
		f.GyldigFra = g.fom
		var tom *regler.Dato
		if i+1 < len(grunnbeloepHistorikk) {
			tom = grunnbeloepHistorikk[i+1].fom.AddDays(-1).Ptr()
		}
		out[i] = regler.Periode[regler.Faktum[decimal.Decimal]]{Data: f, Fom: g.fom, Tom: tom}
	}
	return out
}

// =============================================================================
// GRUNNLAG
// =============================================================================

// Grunnlag is the input to the benefit rules.
type Grunnlag struct {
	Grunnbeloep   regler.Kilde[regler.Faktum[decimal.Decimal]]
	AntallSoesken regler.Kilde[regler.Faktum[int]]
	Trygdetid     regler.Kilde[regler.Faktum[decimal.Decimal]]
}

func (g Grunnlag) Knekkpunkter() []regler.Dato {
	return regler.Knekkpunkter(g.Grunnbeloep, g.AntallSoesken, g.Trygdetid)
}

// NyttGrunnlag builds a grunnlag for periode from sibling periods and a
// trygdetid that is constant over the window. Sibling periods must cover the
// window; G must be known from its start.
func NyttGrunnlag(soesken []regler.Periode[regler.Faktum[int]], trygdetidAar decimal.Decimal, periode regler.RegelPeriode) (Grunnlag, error) {
	tt := regler.NyttFaktum(trygdetidAar, "trygdetid", "Fastsatt trygdetid")
	return NyttGrunnlagMedTrygdetid(soesken, regler.NyKonstantGrunnlag(tt), periode)
}

// NyttGrunnlagMedTrygdetid is NyttGrunnlag with a periodized trygdetid, e.g.
// built from a trygdetid result with Beregnet.SomPerioder.
func NyttGrunnlagMedTrygdetid(
	soesken []regler.Periode[regler.Faktum[int]],
	tt regler.Kilde[regler.Faktum[decimal.Decimal]],
	periode regler.RegelPeriode,
) (Grunnlag, error) {
	g, err := regler.BuildComplete(Grunnbeloep(), periode.Fom, periode.Tom)
	if err != nil {
		return Grunnlag{}, fmt.Errorf("grunnbeløp: %w", err)
	}
	s, err := regler.BuildComplete(soesken, periode.Fom, periode.Tom)
	if err != nil {
		return Grunnlag{}, fmt.Errorf("søsken: %w", err)
	}
	return Grunnlag{Grunnbeloep: g, AntallSoesken: s, Trygdetid: tt}, nil
}

// =============================================================================
// RULES
// =============================================================================

func meta(id, beskrivelse string, gyldigFra regler.Dato) regler.RegelMeta {
	return regler.RegelMeta{ID: id, Beskrivelse: beskrivelse, Versjon: "1", GyldigFra: gyldigFra}
}

var (
	grunnbeloepRegel = regler.FraGrunnlag(meta("grunnbeloep", "Grunnbeløp", Regelverk2021),
		func(g Grunnlag) regler.Kilde[regler.Faktum[decimal.Decimal]] { return g.Grunnbeloep })

	antallSoeskenRegel = regler.FraGrunnlag(meta("antall-soesken", "Antall søsken i kullet", Regelverk2021),
		func(g Grunnlag) regler.Kilde[regler.Faktum[int]] { return g.AntallSoesken })

	trygdetidRegel = regler.FraGrunnlag(meta("trygdetid", "Trygdetid i år", Regelverk2021),
		func(g Grunnlag) regler.Kilde[regler.Faktum[decimal.Decimal]] { return g.Trygdetid })

	trygdetidsfaktor = regler.Benytter(meta("trygdetidsfaktor", "Trygdetid delt på maksimal trygdetid", Regelverk2021),
		trygdetidRegel, func(aar decimal.Decimal) decimal.Decimal {
			maks := decimal.NewFromInt(trygdetid.MaksTrygdetid)
			return decimal.Min(aar, maks).Div(maks)
		})

	soeskenjustertSats = regler.Benytter(meta("soeskenjustert-sats", "Andel av G per barn etter søskenjustering", Regelverk2021),
		antallSoeskenRegel, func(n int) decimal.Decimal {
			soesken := decimal.NewFromInt(int64(n))
			foerste := decimal.RequireFromString("0.40")
			oevrige := decimal.RequireFromString("0.25").Mul(soesken)
			return foerste.Add(oevrige).Div(soesken.Add(decimal.NewFromInt(1)))
		})

	fullTrygdetid2021 = regler.Kombiner(meta("beloep-full-trygdetid-2021", "Årlig beløp ved full trygdetid", Regelverk2021),
		grunnbeloepRegel, soeskenjustertSats, decimal.Decimal.Mul)

	// Barnepensjon2021 is the yearly amount under the 2021 rules.
	Barnepensjon2021 = regler.Kombiner(meta("barnepensjon-2021", "Årlig barnepensjon med søskenjustering", Regelverk2021),
		fullTrygdetid2021, trygdetidsfaktor, decimal.Decimal.Mul)

	fullTrygdetid2024 = regler.Benytter(meta("beloep-full-trygdetid-2024", "Årlig beløp ved full trygdetid, 1 G", Regelverk2024),
		grunnbeloepRegel, func(g decimal.Decimal) decimal.Decimal { return g })

	// Barnepensjon2024 is the yearly amount under the 2024 rules. Windows
	// starting before 2024 give an invalid period.
	Barnepensjon2024 = regler.Kombiner(meta("barnepensjon-2024", "Årlig barnepensjon uten søskenjustering", Regelverk2024),
		fullTrygdetid2024, trygdetidsfaktor, decimal.Decimal.Mul)
)

// Regel returns the ruleset in force on fom.
func Regel(fom regler.Dato) *regler.Regel[Grunnlag, decimal.Decimal] {
	if fom.Before(Regelverk2024) {
		return Barnepensjon2021
	}
	return Barnepensjon2024
}

// Beregn evaluates the ruleset in force at the start of periode.
func Beregn(m *regler.Motor, g Grunnlag, periode regler.RegelPeriode) (regler.Resultat[decimal.Decimal], error) {
	return regler.Kjoer(m, Regel(periode.Fom), g, periode)
}

// Maanedlig converts a yearly amount to a monthly one.
func Maanedlig(aarlig decimal.Decimal) decimal.Decimal {
	return aarlig.Div(decimal.NewFromInt(12))
}
