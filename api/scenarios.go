/*
scenarios.go - Demo scenarios for testing and demonstrations

PURPOSE:
  Provides pre-built evaluations that exercise the typed rule packages and
  the expression rule sets end to end. Each scenario builds its grunnlag,
  runs the engine and stores the run like any other.

AVAILABLE SCENARIOS:
  barnepensjon-2023:          Typed 2021 rules, sibling count changes mid-year
  barnepensjon-2024:          Typed 2024 rules, reduced trygdetid
  trygdetid-prorata:          Trygdetid with a treaty prorata fraction
  ugyldig-periode:            2024 rules evaluated from 2023 (invalid period)
  regelsett-soeskenjustering: The built-in expression rule set

USAGE VIA API:
  POST /api/scenarier/barnepensjon-2023/kjoer

ADDING NEW SCENARIOS:
  1. Add to 'scenarier' slice with ID, name, description
  2. Create runner function: kjoerXxx(ctx, h)
  3. Add it to the 'kjoerere' map

SEE ALSO:
  - handlers.go: Error mapping shared with KjoerRegelsett
  - beregning/, trygdetid/: Typed rule packages
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/beregning"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/factory"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/kjoering"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/trygdetid"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarier = []ScenarioDTO{
	{
		ID:          "barnepensjon-2023",
		Navn:        "Barnepensjon 2023",
		Beskrivelse: "Full trygdetid. A sibling joins on 2023-07-01 and G changes on 2023-05-01, giving three sub-periods.",
		Kategori:    "beregning",
	},
	{
		ID:          "barnepensjon-2024",
		Navn:        "Barnepensjon 2024",
		Beskrivelse: "30 years of trygdetid under the 2024 rules, no sibling adjustment.",
		Kategori:    "beregning",
	},
	{
		ID:          "trygdetid-prorata",
		Navn:        "Trygdetid med prorata",
		Beskrivelse: "Faktisk trygdetid grows mid-year and future trygdetid is added, scaled by a 120/480 treaty fraction.",
		Kategori:    "trygdetid",
	},
	{
		ID:          "ugyldig-periode",
		Navn:        "Ugyldig periode",
		Beskrivelse: "The 2024 rules evaluated from 2023-07-01. No value is computed; the run lists the rules not yet in force.",
		Kategori:    "beregning",
	},
	{
		ID:          "regelsett-soeskenjustering",
		Navn:        "Regelsett med søskenjustering",
		Beskrivelse: "The built-in expression rule set over a grunnlag sent as JSON.",
		Kategori:    "regelsett",
	},
}

var kjoerere = map[string]func(context.Context, *Handler) (*kjoering.Kjoering, error){
	"barnepensjon-2023":          kjoerBarnepensjon2023,
	"barnepensjon-2024":          kjoerBarnepensjon2024,
	"trygdetid-prorata":          kjoerTrygdetidProrata,
	"ugyldig-periode":            kjoerUgyldigPeriode,
	"regelsett-soeskenjustering": kjoerRegelsettSoeskenjustering,
}

// ListScenarier returns all available scenarios.
func (h *Handler) ListScenarier(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarier)
}

// KjoerScenario runs a predefined scenario and returns the stored run.
func (h *Handler) KjoerScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kjoer, ok := kjoerere[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Scenario not found", fmt.Errorf("unknown scenario: %s", id))
		return
	}

	k, err := kjoer(r.Context(), h)
	if err != nil {
		h.writeKjoeringError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toKjoeringDTO(k))
}

// =============================================================================
// SCENARIO RUNNERS
// =============================================================================

func periodeFra(fom, tom string) regler.RegelPeriode {
	return regler.RegelPeriode{Fom: regler.MustParseDato(fom), Tom: regler.MustParseDato(tom)}
}

func soesken(fom string, tom *regler.Dato, antall int) regler.Periode[regler.Faktum[int]] {
	return regler.Periode[regler.Faktum[int]]{
		Data: regler.NyttFaktum(antall, "pdl", "Antall søsken i kullet"),
		Fom:  regler.MustParseDato(fom),
		Tom:  tom,
	}
}

func trygdetidAar(fom string, tom *regler.Dato, aar int64, kilde string) regler.Periode[regler.Faktum[decimal.Decimal]] {
	return regler.Periode[regler.Faktum[decimal.Decimal]]{
		Data: regler.NyttFaktum(decimal.NewFromInt(aar), kilde, "Trygdetid i år"),
		Fom:  regler.MustParseDato(fom),
		Tom:  tom,
	}
}

func kjoerBarnepensjon2023(ctx context.Context, h *Handler) (*kjoering.Kjoering, error) {
	periode := periodeFra("2023-01-01", "2023-12-31")
	g, err := beregning.NyttGrunnlag([]regler.Periode[regler.Faktum[int]]{
		soesken("2023-01-01", regler.MustParseDato("2023-06-30").Ptr(), 0),
		soesken("2023-07-01", nil, 1),
	}, decimal.NewFromInt(40), periode)
	if err != nil {
		return nil, err
	}

	res, err := beregning.Beregn(h.Tjeneste.Motor(), g, periode)
	if err != nil {
		return nil, err
	}
	return kjoering.Registrer(ctx, h.Tjeneste, "barnepensjon-typet", beregning.Regel(periode.Fom).ID(), res, periode)
}

func kjoerBarnepensjon2024(ctx context.Context, h *Handler) (*kjoering.Kjoering, error) {
	periode := periodeFra("2024-01-01", "2024-12-31")
	g, err := beregning.NyttGrunnlag([]regler.Periode[regler.Faktum[int]]{
		soesken("2024-01-01", nil, 2),
	}, decimal.NewFromInt(30), periode)
	if err != nil {
		return nil, err
	}

	res, err := beregning.Beregn(h.Tjeneste.Motor(), g, periode)
	if err != nil {
		return nil, err
	}
	return kjoering.Registrer(ctx, h.Tjeneste, "barnepensjon-typet", beregning.Regel(periode.Fom).ID(), res, periode)
}

func kjoerTrygdetidProrata(ctx context.Context, h *Handler) (*kjoering.Kjoering, error) {
	periode := periodeFra("2023-01-01", "2023-12-31")
	g, err := trygdetid.NyttGrunnlag(
		[]regler.Periode[regler.Faktum[decimal.Decimal]]{
			trygdetidAar("2023-01-01", regler.MustParseDato("2023-08-31").Ptr(), 10, "opptjening"),
			trygdetidAar("2023-09-01", nil, 11, "opptjening"),
		},
		[]regler.Periode[regler.Faktum[decimal.Decimal]]{
			trygdetidAar("2023-01-01", nil, 20, "fremtidig"),
		},
		&trygdetid.Broek{Teller: 120, Nevner: 480},
		periode,
	)
	if err != nil {
		return nil, err
	}

	res, err := trygdetid.Beregn(h.Tjeneste.Motor(), g, periode)
	if err != nil {
		return nil, err
	}
	return kjoering.Registrer(ctx, h.Tjeneste, "trygdetid", trygdetid.BeregnetTrygdetid.ID(), res, periode)
}

func kjoerUgyldigPeriode(ctx context.Context, h *Handler) (*kjoering.Kjoering, error) {
	periode := periodeFra("2023-07-01", "2024-06-30")
	g, err := beregning.NyttGrunnlag([]regler.Periode[regler.Faktum[int]]{
		soesken("2023-07-01", nil, 0),
	}, decimal.NewFromInt(40), periode)
	if err != nil {
		return nil, err
	}

	res, err := regler.Kjoer(h.Tjeneste.Motor(), beregning.Barnepensjon2024, g, periode)
	if err != nil {
		return nil, err
	}
	return kjoering.Registrer(ctx, h.Tjeneste, "barnepensjon-typet", beregning.Barnepensjon2024.ID(), res, periode)
}

func kjoerRegelsettSoeskenjustering(ctx context.Context, h *Handler) (*kjoering.Kjoering, error) {
	rs, ok := h.hentRegelsett(StandardRegelsett)
	if !ok {
		return nil, fmt.Errorf("rule set %q is not registered", StandardRegelsett)
	}

	grunnlag, err := factory.ParseGrunnlag(`{
  "grunnbeloep": {
    "kilde": "grunnbeloep",
    "perioder": [
      {"fom": "2022-05-01", "tom": "2023-04-30", "verdi": 111477},
      {"fom": "2023-05-01", "verdi": 118620}
    ]
  },
  "antall_soesken": {
    "kilde": "pdl",
    "perioder": [
      {"fom": "2023-01-01", "tom": "2023-06-30", "verdi": 0},
      {"fom": "2023-07-01", "verdi": 1}
    ]
  },
  "trygdetid": {"kilde": "trygdetid", "konstant": 40}
}`)
	if err != nil {
		return nil, err
	}
	return h.Tjeneste.KjoerRegelsett(ctx, rs, grunnlag, periodeFra("2023-01-01", "2023-12-31"))
}
