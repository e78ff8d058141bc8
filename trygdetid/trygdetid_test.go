package trygdetid_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/trygdetid"
)

func dato(s string) regler.Dato { return regler.MustParseDato(s) }

func aar(fom string, tom *regler.Dato, verdi string) regler.Periode[regler.Faktum[decimal.Decimal]] {
	return regler.Periode[regler.Faktum[decimal.Decimal]]{
		Data: regler.NyttFaktum(decimal.RequireFromString(verdi), "trygdetidsregister", "Registrert trygdetid"),
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

func beregn(t *testing.T, g trygdetid.Grunnlag, p regler.RegelPeriode) *regler.Beregnet[decimal.Decimal] {
	t.Helper()
	res, err := trygdetid.Beregn(regler.NyMotor(), g, p)
	require.NoError(t, err)
	b, ok := res.(*regler.Beregnet[decimal.Decimal])
	require.True(t, ok, "expected Beregnet, got %T", res)
	return b
}

func TestBeregn_SumsFaktiskAndFremtidig(t *testing.T) {
	p := vindu(t, "2023-01-01", "2023-12-31")
	g, err := trygdetid.NyttGrunnlag(
		[]regler.Periode[regler.Faktum[decimal.Decimal]]{
			aar("2023-01-01", dato("2023-06-30").Ptr(), "12.5"),
			aar("2023-07-01", nil, "13"),
		},
		[]regler.Periode[regler.Faktum[decimal.Decimal]]{aar("2023-01-01", nil, "20")},
		nil, p)
	require.NoError(t, err)

	b := beregn(t, g, p)
	require.Len(t, b.Perioder, 2)
	assert.True(t, decimal.RequireFromString("32.5").Equal(b.Perioder[0].Resultat.Verdi))
	assert.True(t, decimal.NewFromInt(33).Equal(b.Perioder[1].Resultat.Verdi))
	assert.Equal(t, "beregnet-trygdetid", b.Perioder[0].Resultat.Kilde)
	assert.Contains(t, b.Perioder[0].Resultat.Spor().Kilder(), "trygdetidsregister")
}

func TestBeregn_CappedAtMaks(t *testing.T) {
	p := vindu(t, "2023-01-01", "2023-12-31")
	g, err := trygdetid.NyttGrunnlag(
		[]regler.Periode[regler.Faktum[decimal.Decimal]]{aar("2020-01-01", nil, "30")},
		[]regler.Periode[regler.Faktum[decimal.Decimal]]{aar("2020-01-01", nil, "25")},
		nil, p)
	require.NoError(t, err)

	b := beregn(t, g, p)
	require.Len(t, b.Perioder, 1)
	assert.True(t, decimal.NewFromInt(trygdetid.MaksTrygdetid).Equal(b.Perioder[0].Resultat.Verdi))
}

func TestBeregn_Prorata(t *testing.T) {
	p := vindu(t, "2023-01-01", "2023-03-31")
	g, err := trygdetid.NyttGrunnlag(
		[]regler.Periode[regler.Faktum[decimal.Decimal]]{aar("2020-01-01", nil, "40")},
		nil,
		&trygdetid.Broek{Teller: 120, Nevner: 480},
		p)
	require.NoError(t, err)

	b := beregn(t, g, p)
	require.Len(t, b.Perioder, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(b.Perioder[0].Resultat.Verdi))
}

func TestNyttGrunnlag_IncompleteFaktisk(t *testing.T) {
	p := vindu(t, "2023-01-01", "2023-12-31")
	_, err := trygdetid.NyttGrunnlag(
		[]regler.Periode[regler.Faktum[decimal.Decimal]]{aar("2023-03-01", nil, "10")},
		nil, nil, p)
	assert.ErrorIs(t, err, regler.ErrIncompletePeriods)
}

func TestBeregn_BeforeRegelverk(t *testing.T) {
	p := vindu(t, "2014-06-01", "2015-06-30")
	g, err := trygdetid.NyttGrunnlag(
		[]regler.Periode[regler.Faktum[decimal.Decimal]]{aar("2010-01-01", nil, "10")},
		nil, nil, p)
	require.NoError(t, err)

	res, err := trygdetid.Beregn(regler.NyMotor(), g, p)
	require.NoError(t, err)
	ugyldig, ok := res.(*regler.UgyldigPeriode[decimal.Decimal])
	require.True(t, ok, "expected UgyldigPeriode, got %T", res)
	assert.Contains(t, ugyldig.RegelIDer, "beregnet-trygdetid")
}

func TestAarOgMaaneder(t *testing.T) {
	tests := []struct {
		verdi    string
		aar      int
		maaneder int
	}{
		{"0", 0, 0},
		{"12.5", 12, 6},
		{"39.99", 39, 11},
		{"40", 40, 0},
	}
	for _, tt := range tests {
		t.Run(tt.verdi, func(t *testing.T) {
			a, m := trygdetid.AarOgMaaneder(decimal.RequireFromString(tt.verdi))
			assert.Equal(t, tt.aar, a)
			assert.Equal(t, tt.maaneder, m)
		})
	}
}

func TestBroek_ZeroNevner(t *testing.T) {
	assert.True(t, decimal.NewFromInt(1).Equal(trygdetid.Broek{}.Verdi()))
	assert.Equal(t, "1/4", trygdetid.Broek{Teller: 1, Nevner: 4}.String())
}
