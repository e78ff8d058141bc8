/*
Package trygdetid computes insurance periods with the rule engine.

PURPOSE:
  Trygdetid is the number of years a person has been a member of the
  national insurance scheme. It is one of the inputs to the benefit
  calculation, and is computed per period because registered insurance
  periods and prorata agreements change over time.

RULE TREE:
  beregnet-trygdetid
    ├── avkortet-trygdetid = min(faktisk + fremtidig, 40)
    │     ├── total-trygdetid
    │     │     ├── faktisk-trygdetid    (grunnlag, periodized)
    │     │     └── fremtidig-trygdetid  (grunnlag, periodized)
    │     └── maks-trygdetid             (constant 40)
    └── prorata-broek                    (grunnlag, usually constant)

USAGE:
  g, err := trygdetid.NyttGrunnlag(faktiske, fremtidige, nil, periode)
  res, err := trygdetid.Beregn(motor, g, periode)

SEE ALSO:
  - beregning/: Uses the computed trygdetid
  - regler/: The engine
*/
package trygdetid

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
)

// MaksTrygdetid is the number of years that gives full trygdetid.
const MaksTrygdetid = 40

// RegelverkFom is the date the trygdetid rules are valid from.
var RegelverkFom = regler.NyDato(2015, 1, 1)

const kildeBeregning = "trygdetid"

// =============================================================================
// GRUNNLAG
// =============================================================================

// Broek is a prorata fraction, e.g. 120/480 months.
type Broek struct {
	Teller int64 `json:"teller"`
	Nevner int64 `json:"nevner"`
}

// Verdi returns the fraction as a decimal. A zero denominator is treated as
// no prorata (1).
func (b Broek) Verdi() decimal.Decimal {
	if b.Nevner == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(b.Teller).Div(decimal.NewFromInt(b.Nevner))
}

func (b Broek) String() string { return fmt.Sprintf("%d/%d", b.Teller, b.Nevner) }

// Grunnlag is the input to the trygdetid rules. Years are decimals.
type Grunnlag struct {
	FaktiskTrygdetid   regler.Kilde[regler.Faktum[decimal.Decimal]]
	FremtidigTrygdetid regler.Kilde[regler.Faktum[decimal.Decimal]]
	Prorata            regler.Kilde[regler.Faktum[Broek]]
}

func (g Grunnlag) Knekkpunkter() []regler.Dato {
	return regler.Knekkpunkter(g.FaktiskTrygdetid, g.FremtidigTrygdetid, g.Prorata)
}

// NyttGrunnlag validates the periodized inputs for periode. A nil prorata
// means national trygdetid only.
func NyttGrunnlag(
	faktisk []regler.Periode[regler.Faktum[decimal.Decimal]],
	fremtidig []regler.Periode[regler.Faktum[decimal.Decimal]],
	prorata *Broek,
	periode regler.RegelPeriode,
) (Grunnlag, error) {
	faktiskKilde, err := regler.BuildComplete(faktisk, periode.Fom, periode.Tom)
	if err != nil {
		return Grunnlag{}, fmt.Errorf("faktisk trygdetid: %w", err)
	}

	// Missing future trygdetid counts as zero years.
	ingenFremtidig := regler.NyttFaktum(decimal.Zero, kildeBeregning, "Ingen fremtidig trygdetid registrert")
	var fremtidigKilde regler.Kilde[regler.Faktum[decimal.Decimal]] = regler.NyKonstantGrunnlag(ingenFremtidig)
	if len(fremtidig) > 0 {
		pg, err := regler.BuildWithDefault(fremtidig, func(regler.Dato, regler.Dato, *regler.Dato) regler.Faktum[decimal.Decimal] {
			return ingenFremtidig
		})
		if err != nil {
			return Grunnlag{}, fmt.Errorf("fremtidig trygdetid: %w", err)
		}
		fremtidigKilde = pg
	}

	broek := Broek{Teller: 1, Nevner: 1}
	beskrivelse := "Nasjonal trygdetid"
	if prorata != nil {
		broek = *prorata
		beskrivelse = "Prorata etter trygdeavtale"
	}

	return Grunnlag{
		FaktiskTrygdetid:   faktiskKilde,
		FremtidigTrygdetid: fremtidigKilde,
		Prorata:            regler.NyKonstantGrunnlag(regler.NyttFaktum(broek, kildeBeregning, beskrivelse)),
	}, nil
}

// =============================================================================
// RULES
// =============================================================================

func meta(id, beskrivelse string) regler.RegelMeta {
	return regler.RegelMeta{ID: id, Beskrivelse: beskrivelse, Versjon: "1", GyldigFra: RegelverkFom}
}

var (
	faktiskTrygdetid = regler.FraGrunnlag(meta("faktisk-trygdetid", "Faktisk trygdetid i år"),
		func(g Grunnlag) regler.Kilde[regler.Faktum[decimal.Decimal]] { return g.FaktiskTrygdetid })

	fremtidigTrygdetid = regler.FraGrunnlag(meta("fremtidig-trygdetid", "Fremtidig trygdetid i år"),
		func(g Grunnlag) regler.Kilde[regler.Faktum[decimal.Decimal]] { return g.FremtidigTrygdetid })

	totalTrygdetid = regler.Kombiner(meta("total-trygdetid", "Faktisk pluss fremtidig trygdetid"),
		faktiskTrygdetid, fremtidigTrygdetid, decimal.Decimal.Add)

	maksTrygdetid = regler.Konstant[Grunnlag](meta("maks-trygdetid", "Maksimal trygdetid i år"),
		decimal.NewFromInt(MaksTrygdetid))

	avkortetTrygdetid = regler.Kombiner(meta("avkortet-trygdetid", "Trygdetid begrenset til maksimal trygdetid"),
		totalTrygdetid, maksTrygdetid, func(total, maks decimal.Decimal) decimal.Decimal {
			return decimal.Min(total, maks)
		})

	prorataBroek = regler.FraGrunnlag(meta("prorata-broek", "Prorata brøk"),
		func(g Grunnlag) regler.Kilde[regler.Faktum[Broek]] { return g.Prorata })

	// BeregnetTrygdetid is the trygdetid in years used by the benefit calculation.
	BeregnetTrygdetid = regler.Kombiner(meta("beregnet-trygdetid", "Beregnet trygdetid justert for prorata"),
		avkortetTrygdetid, prorataBroek, func(aar decimal.Decimal, broek Broek) decimal.Decimal {
			return aar.Mul(broek.Verdi())
		})
)

// Beregn evaluates BeregnetTrygdetid over periode.
func Beregn(m *regler.Motor, g Grunnlag, periode regler.RegelPeriode) (regler.Resultat[decimal.Decimal], error) {
	return regler.Kjoer(m, BeregnetTrygdetid, g, periode)
}

// AarOgMaaneder splits decimal years into whole years and whole months,
// truncating any remainder.
func AarOgMaaneder(aar decimal.Decimal) (int, int) {
	maaneder := aar.Mul(decimal.NewFromInt(12)).IntPart()
	return int(maaneder / 12), int(maaneder % 12)
}
