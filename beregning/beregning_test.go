package beregning_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/beregning"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/trygdetid"
)

func dato(s string) regler.Dato { return regler.MustParseDato(s) }

func soesken(n int, fom string, tom *regler.Dato) regler.Periode[regler.Faktum[int]] {
	return regler.Periode[regler.Faktum[int]]{
		Data: regler.NyttFaktum(n, "folkeregister", "Søsken i kullet"),
		Fom:  dato(fom),
		Tom:  tom,
	}
}

func vindu(t *testing.T, fom, tom string) regler.RegelPeriode {
	t.Helper()
	p, err := regler.NyRegelPeriode(dato(fom), dato(tom))
	require.NoError(t, err)
	return p
}

func assertBeloep(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestGrunnbeloep_Contiguous(t *testing.T) {
	g := beregning.Grunnbeloep()
	require.NotEmpty(t, g)
	assert.True(t, regler.ValidateNoGaps(g))
	assert.True(t, regler.ValidateNoOverlap(g))
	assert.True(t, g[len(g)-1].ErApen())
}

func TestBeregn_2021_SlicesAtGAndSiblingChange(t *testing.T) {
	p := vindu(t, "2023-01-01", "2023-12-31")
	g, err := beregning.NyttGrunnlag([]regler.Periode[regler.Faktum[int]]{
		soesken(1, "2022-01-01", dato("2023-08-31").Ptr()),
		soesken(2, "2023-09-01", nil),
	}, decimal.NewFromInt(40), p)
	require.NoError(t, err)

	res, err := beregning.Beregn(regler.NyMotor(), g, p)
	require.NoError(t, err)
	b, ok := res.(*regler.Beregnet[decimal.Decimal])
	require.True(t, ok, "expected Beregnet, got %T", res)

	require.Len(t, b.Perioder, 3)
	assert.Equal(t, dato("2023-04-30"), b.Perioder[0].Periode.Tom)
	assert.Equal(t, dato("2023-05-01"), b.Perioder[1].Periode.Fom)
	assert.Equal(t, dato("2023-09-01"), b.Perioder[2].Periode.Fom)

	assertBeloep(t, "36230.025", b.Perioder[0].Resultat.Verdi) // 111477 * 0.325
	assertBeloep(t, "38551.5", b.Perioder[1].Resultat.Verdi)   // 118620 * 0.325
	assertBeloep(t, "35586", b.Perioder[2].Resultat.Verdi)     // 118620 * 0.3

	assert.Subset(t, b.Perioder[0].Resultat.Spor().Kilder(), []string{"barnepensjon-2021", "grunnbeloep", "folkeregister"})
}

func TestBeregn_2024_ReducedTrygdetid(t *testing.T) {
	p := vindu(t, "2024-01-01", "2024-12-31")
	g, err := beregning.NyttGrunnlag([]regler.Periode[regler.Faktum[int]]{soesken(3, "2024-01-01", nil)},
		decimal.NewFromInt(20), p)
	require.NoError(t, err)

	res, err := beregning.Beregn(regler.NyMotor(), g, p)
	require.NoError(t, err)
	b, ok := res.(*regler.Beregnet[decimal.Decimal])
	require.True(t, ok, "expected Beregnet, got %T", res)

	require.Len(t, b.Perioder, 2)
	assertBeloep(t, "59310", b.Perioder[0].Resultat.Verdi)
	assertBeloep(t, "62014", b.Perioder[1].Resultat.Verdi)
	assertBeloep(t, "5167.8333333333333333", beregning.Maanedlig(b.Perioder[1].Resultat.Verdi))
}

func TestBeregn_2024RulesBeforeRegelverk(t *testing.T) {
	p := vindu(t, "2023-06-01", "2024-06-30")
	g, err := beregning.NyttGrunnlag([]regler.Periode[regler.Faktum[int]]{soesken(0, "2023-01-01", nil)},
		decimal.NewFromInt(40), p)
	require.NoError(t, err)

	res, err := regler.Kjoer(regler.NyMotor(), beregning.Barnepensjon2024, g, p)
	require.NoError(t, err)

	ider := regler.Match(res,
		func(*regler.Beregnet[decimal.Decimal]) []string { return nil },
		func(u *regler.UgyldigPeriode[decimal.Decimal]) []string { return u.RegelIDer })
	assert.Contains(t, ider, "barnepensjon-2024")
	assert.NotContains(t, ider, "grunnbeloep")
}

func TestNyttGrunnlag_SiblingsMustCoverWindow(t *testing.T) {
	p := vindu(t, "2023-01-01", "2023-12-31")
	_, err := beregning.NyttGrunnlag([]regler.Periode[regler.Faktum[int]]{
		soesken(1, "2023-01-01", dato("2023-03-31").Ptr()),
		soesken(1, "2023-05-01", nil),
	}, decimal.NewFromInt(40), p)
	assert.ErrorIs(t, err, regler.ErrIncompletePeriods)
	assert.True(t, regler.IsClientError(err))
}

// The trygdetid result feeds the benefit calculation as a periodized input.
func TestBeregn_WithTrygdetidResult(t *testing.T) {
	p := vindu(t, "2023-01-01", "2023-12-31")
	tg, err := trygdetid.NyttGrunnlag(
		[]regler.Periode[regler.Faktum[decimal.Decimal]]{
			{Data: regler.NyttFaktum(decimal.NewFromInt(10), "register", "Faktisk"), Fom: dato("2023-01-01"), Tom: dato("2023-02-28").Ptr()},
			{Data: regler.NyttFaktum(decimal.NewFromInt(20), "register", "Faktisk"), Fom: dato("2023-03-01")},
		}, nil, nil, p)
	require.NoError(t, err)

	motor := regler.NyMotor()
	tres, err := trygdetid.Beregn(motor, tg, p)
	require.NoError(t, err)
	tb, ok := tres.(*regler.Beregnet[decimal.Decimal])
	require.True(t, ok)

	tt, err := regler.BuildComplete(tb.SomPerioder(), p.Fom, p.Tom)
	require.NoError(t, err)

	g, err := beregning.NyttGrunnlagMedTrygdetid([]regler.Periode[regler.Faktum[int]]{soesken(0, "2023-01-01", nil)}, tt, p)
	require.NoError(t, err)

	res, err := beregning.Beregn(motor, g, p)
	require.NoError(t, err)
	b, ok := res.(*regler.Beregnet[decimal.Decimal])
	require.True(t, ok)

	require.Len(t, b.Perioder, 3)
	assertBeloep(t, "11147.7", b.Perioder[0].Resultat.Verdi) // 111477 * 0.4 * 10/40
	assertBeloep(t, "22295.4", b.Perioder[1].Resultat.Verdi) // 111477 * 0.4 * 20/40
	assertBeloep(t, "23724", b.Perioder[2].Resultat.Verdi)   // 118620 * 0.4 * 20/40
	assert.Contains(t, b.Perioder[0].Resultat.Spor().Kilder(), "beregnet-trygdetid")
}
