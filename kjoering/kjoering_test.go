package kjoering_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/factory"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/kjoering"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/kjoering/store"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
)

func vindu(t *testing.T, fom, tom string) regler.RegelPeriode {
	t.Helper()
	p, err := regler.NyRegelPeriode(regler.MustParseDato(fom), regler.MustParseDato(tom))
	require.NoError(t, err)
	return p
}

func regelsett(t *testing.T) *factory.Regelsett {
	t.Helper()
	rs, err := factory.NewRegelsettFactory().ParseRegelsett(factory.BarnepensjonRegelsettJSON("bp", "2021.1"))
	require.NoError(t, err)
	return rs
}

func grunnlag(t *testing.T) factory.GrunnlagJSON {
	t.Helper()
	g, err := factory.ParseGrunnlag(`{
	  "grunnbeloep": {"konstant": 118620},
	  "antall_soesken": {"perioder": [
	    {"fom": "2023-01-01", "tom": "2023-06-30", "verdi": 0},
	    {"fom": "2023-07-01", "verdi": 1}
	  ]},
	  "trygdetid": {"konstant": 40}
	}`)
	require.NoError(t, err)
	return g
}

func TestKjoerRegelsett_StoresRun(t *testing.T) {
	ctx := context.Background()
	tj := kjoering.NyTjeneste(store.NewMemory(), regler.NyMotor(regler.MedRegelVersjon("v1")), nil)

	k, err := tj.KjoerRegelsett(ctx, regelsett(t), grunnlag(t), vindu(t, "2023-01-01", "2023-12-31"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, k.ID)
	assert.False(t, k.Evaluert.IsZero())
	assert.Equal(t, kjoering.StatusBeregnet, k.Status)
	assert.Equal(t, "bp", k.RegelsettID)
	assert.Equal(t, "2021.1", k.RegelsettVersjon)
	assert.Equal(t, "barnepensjon", k.RegelID)
	assert.Equal(t, "v1", k.RegelVersjon)
	require.Len(t, k.Perioder, 2)
	assert.InDelta(t, 118620*0.40, k.Perioder[0].Spor.Verdi, 1e-6)
	assert.InDelta(t, 118620*0.325, k.Perioder[1].Spor.Verdi, 1e-6)

	hentet, err := tj.Hent(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, k.ID, hentet.ID)
	assert.Len(t, hentet.Perioder, 2)
}

func TestKjoerRegelsett_InvalidPeriodIsStored(t *testing.T) {
	ctx := context.Background()
	tj := kjoering.NyTjeneste(store.NewMemory(), regler.NyMotor(), nil)

	k, err := tj.KjoerRegelsett(ctx, regelsett(t), factory.GrunnlagJSON{
		"grunnbeloep":    {Konstant: 101351.0},
		"antall_soesken": {Konstant: 0.0},
		"trygdetid":      {Konstant: 40.0},
	}, vindu(t, "2020-06-01", "2021-06-30"))
	require.NoError(t, err)

	assert.Equal(t, kjoering.StatusUgyldigPeriode, k.Status)
	assert.Empty(t, k.RegelVersjon)
	assert.ElementsMatch(t, []string{"barnepensjon", "beloep_full_trygdetid", "soeskenjustert_sats"}, k.UgyldigeRegler)
	assert.Empty(t, k.Perioder)
}

func TestKjoerRegelsett_ClientErrorsAreNotStored(t *testing.T) {
	ctx := context.Background()
	lager := store.NewMemory()
	tj := kjoering.NyTjeneste(lager, regler.NyMotor(), nil)

	_, err := tj.KjoerRegelsett(ctx, regelsett(t), grunnlag(t), vindu(t, "2022-12-01", "2023-12-31"))
	assert.ErrorIs(t, err, regler.ErrIncompletePeriods)
	assert.True(t, factory.IsClientError(err))

	_, err = tj.KjoerRegelsett(ctx, regelsett(t), factory.GrunnlagJSON{"trygdetid": {Konstant: 40.0}}, vindu(t, "2023-01-01", "2023-12-31"))
	assert.ErrorIs(t, err, factory.ErrManglendeFelt)

	runs, err := lager.List(ctx, kjoering.Filter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestKjoerRegelsett_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tj := kjoering.NyTjeneste(store.NewMemory(), regler.NyMotor(), nil)
	_, err := tj.KjoerRegelsett(ctx, regelsett(t), grunnlag(t), vindu(t, "2023-01-01", "2023-12-31"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistrer_TypedResult(t *testing.T) {
	ctx := context.Background()
	tj := kjoering.NyTjeneste(store.NewMemory(), regler.NyMotor(), nil)

	p := vindu(t, "2023-01-01", "2023-01-31")
	res := &regler.Beregnet[int]{Perioder: []regler.PeriodisertResultat[int]{
		{Periode: p, Resultat: regler.NyttFaktum(42, "test", "Svaret")},
	}}

	k, err := kjoering.Registrer[int](ctx, tj, "typet", "svar", res, p)
	require.NoError(t, err)
	assert.Equal(t, "typet", k.RegelsettID)
	require.Len(t, k.Perioder, 1)
	assert.Equal(t, 42, k.Perioder[0].Spor.Verdi)
}

func TestKjoerFlere(t *testing.T) {
	ctx := context.Background()
	lager := store.NewMemory()
	tj := kjoering.NyTjeneste(lager, regler.NyMotor(), nil)
	rs := regelsett(t)

	jobber := []kjoering.Jobb{
		{Regelsett: rs, Grunnlag: grunnlag(t), Periode: vindu(t, "2023-01-01", "2023-12-31")},
		{Regelsett: rs, Grunnlag: grunnlag(t), Periode: vindu(t, "2023-01-01", "2023-03-31")},
		{Regelsett: rs, Grunnlag: grunnlag(t), Periode: vindu(t, "2023-07-01", "2023-07-31")},
	}

	runs, err := tj.KjoerFlere(ctx, jobber, 2)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "2021.1", runs[0].RegelVersjon, "rule set version when the engine has none")
	assert.Len(t, runs[0].Perioder, 2)
	assert.Len(t, runs[1].Perioder, 1)
	assert.InDelta(t, 118620*0.325, runs[2].Perioder[0].Spor.Verdi, 1e-6)

	stored, err := lager.List(ctx, kjoering.Filter{})
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestKjoerFlere_StopsOnError(t *testing.T) {
	tj := kjoering.NyTjeneste(store.NewMemory(), regler.NyMotor(), nil)
	rs := regelsett(t)

	_, err := tj.KjoerFlere(context.Background(), []kjoering.Jobb{
		{Regelsett: rs, Grunnlag: grunnlag(t), Periode: vindu(t, "2023-01-01", "2023-12-31")},
		{Regelsett: rs, Grunnlag: grunnlag(t), Periode: vindu(t, "2022-12-01", "2023-12-31")},
	}, 1)
	assert.ErrorIs(t, err, regler.ErrIncompletePeriods)
	assert.ErrorContains(t, err, "jobb 1")
}

func TestHent_NotFound(t *testing.T) {
	tj := kjoering.NyTjeneste(store.NewMemory(), regler.NyMotor(), nil)
	_, err := tj.Hent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, kjoering.ErrKjoeringNotFound)
}
