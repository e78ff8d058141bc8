package regler_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dato(s string) regler.Dato { return regler.MustParseDato(s) }

func tom(s string) *regler.Dato { return dato(s).Ptr() }

func periode[T any](data T, fom string, til *regler.Dato) regler.Periode[T] {
	return regler.Periode[T]{Data: data, Fom: dato(fom), Tom: til}
}

// =============================================================================
// CHECKS
// =============================================================================

func TestValidateNoOverlap(t *testing.T) {
	tests := []struct {
		name     string
		perioder []regler.Periode[int]
		want     bool
	}{
		{"empty", nil, true},
		{"single open period", []regler.Periode[int]{periode(1, "2023-01-01", nil)}, true},
		{"contiguous", []regler.Periode[int]{
			periode(1, "2023-01-01", tom("2023-03-31")),
			periode(2, "2023-04-01", nil),
		}, true},
		{"gap is not overlap", []regler.Periode[int]{
			periode(1, "2023-01-01", tom("2023-01-31")),
			periode(2, "2023-03-01", nil),
		}, true},
		{"shared day", []regler.Periode[int]{
			periode(1, "2023-01-01", tom("2023-04-01")),
			periode(2, "2023-04-01", nil),
		}, false},
		{"open period not last", []regler.Periode[int]{
			periode(1, "2023-01-01", nil),
			periode(2, "2023-04-01", nil),
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, regler.ValidateNoOverlap(tt.perioder))
		})
	}
}

func TestValidateNoGaps(t *testing.T) {
	contiguous := []regler.Periode[int]{
		periode(1, "2023-01-01", tom("2023-03-31")),
		periode(2, "2023-04-01", tom("2023-04-30")),
		periode(3, "2023-05-01", nil),
	}
	assert.True(t, regler.ValidateNoGaps(contiguous))

	withGap := []regler.Periode[int]{
		periode(1, "2023-01-01", tom("2023-01-31")),
		periode(2, "2023-03-01", nil),
	}
	assert.False(t, regler.ValidateNoGaps(withGap))
}

func TestValidateFullCoverage(t *testing.T) {
	perioder := []regler.Periode[int]{
		periode(1, "2023-01-01", tom("2023-03-31")),
		periode(2, "2023-04-01", tom("2023-06-30")),
	}

	assert.True(t, regler.ValidateFullCoverage(perioder, dato("2023-02-01"), dato("2023-05-31")))
	assert.True(t, regler.ValidateFullCoverage(perioder, dato("2023-01-01"), dato("2023-06-30")))
	assert.False(t, regler.ValidateFullCoverage(perioder, dato("2022-12-31"), dato("2023-05-31")),
		"window starting before the first period")
	assert.False(t, regler.ValidateFullCoverage(perioder, dato("2023-02-01"), dato("2023-07-01")),
		"window ending after a closed last period")
}

func TestValidateFullCoverage_IgnoresPeriodsAfterWindow(t *testing.T) {
	perioder := []regler.Periode[int]{
		periode(1, "2023-01-01", tom("2023-03-31")),
		periode(2, "2023-06-01", nil), // gap in April-May, after the window
	}
	assert.True(t, regler.ValidateFullCoverage(perioder, dato("2023-01-15"), dato("2023-03-31")))
}

func TestValidateFullCoverage_OpeningPeriodEndsBeforeWindow(t *testing.T) {
	perioder := []regler.Periode[int]{
		periode(1, "2022-01-01", tom("2022-06-30")),
	}
	assert.False(t, regler.ValidateFullCoverage(perioder, dato("2023-01-01"), dato("2023-01-31")))
}

// =============================================================================
// BUILD COMPLETE
// =============================================================================

func TestBuildComplete_Succeeds(t *testing.T) {
	pg, err := regler.BuildComplete([]regler.Periode[int]{
		periode(2, "2023-04-01", nil),
		periode(1, "2023-01-01", tom("2023-03-31")),
	}, dato("2023-02-01"), dato("2023-05-31"))
	require.NoError(t, err)

	perioder := pg.Perioder()
	require.Len(t, perioder, 2)
	assert.Equal(t, dato("2023-01-01"), perioder[0].Fom, "periods are sorted by fom")
}

func TestBuildComplete_NoPeriods(t *testing.T) {
	_, err := regler.BuildComplete([]regler.Periode[int]{}, dato("2023-01-01"), dato("2023-01-31"))
	assert.ErrorIs(t, err, regler.ErrNoPeriods)
}

func TestBuildComplete_Overlapping(t *testing.T) {
	_, err := regler.BuildComplete([]regler.Periode[int]{
		periode(1, "2023-01-01", tom("2023-04-15")),
		periode(2, "2023-04-01", nil),
	}, dato("2023-01-01"), dato("2023-05-31"))
	assert.ErrorIs(t, err, regler.ErrOverlappingPeriods)

	var feil *regler.PeriodiseringFeil
	require.ErrorAs(t, err, &feil)
	assert.Equal(t, 2, feil.Antall)
}

// Scenario: a gap in February makes the window incomplete.
func TestBuildComplete_GapIsIncomplete(t *testing.T) {
	_, err := regler.BuildComplete([]regler.Periode[int]{
		periode(1, "2023-01-01", tom("2023-01-31")),
		periode(2, "2023-03-01", nil),
	}, dato("2023-01-01"), dato("2023-03-31"))

	assert.ErrorIs(t, err, regler.ErrIncompletePeriods)
	assert.True(t, regler.IsPeriodiseringFeil(err))
	assert.True(t, regler.IsClientError(err))
}

func TestBuildComplete_NoPeriodCoversWindowStart(t *testing.T) {
	// Every period starts after the window: a typed error, never a panic.
	_, err := regler.BuildComplete([]regler.Periode[int]{
		periode(1, "2023-03-01", nil),
	}, dato("2023-01-01"), dato("2023-03-31"))
	assert.ErrorIs(t, err, regler.ErrIncompletePeriods)
}

func TestBuildComplete_MalformedPeriod(t *testing.T) {
	_, err := regler.BuildComplete([]regler.Periode[int]{
		periode(1, "2023-03-01", tom("2023-02-01")),
	}, dato("2023-03-01"), dato("2023-03-31"))
	assert.ErrorIs(t, err, regler.ErrInvalidPeriod)
}

func TestBuildComplete_DoesNotMutateInput(t *testing.T) {
	input := []regler.Periode[int]{
		periode(2, "2023-04-01", nil),
		periode(1, "2023-01-01", tom("2023-03-31")),
	}
	_, err := regler.BuildComplete(input, dato("2023-01-01"), dato("2023-12-31"))
	require.NoError(t, err)
	assert.Equal(t, 2, input[0].Data)
}

// Coverage completeness: BuildComplete succeeds iff every date in the window
// maps to a period.
func TestBuildComplete_CoverageMatchesLookup(t *testing.T) {
	lister := [][]regler.Periode[int]{
		{periode(1, "2023-01-01", tom("2023-01-31")), periode(2, "2023-02-01", tom("2023-02-28"))},
		{periode(1, "2023-01-01", tom("2023-01-20")), periode(2, "2023-02-01", nil)},
		{periode(1, "2023-01-10", nil)},
		{periode(1, "2022-12-01", tom("2023-01-31")), periode(2, "2023-02-15", tom("2023-03-31"))},
	}
	vinduer := []regler.RegelPeriode{
		{Fom: dato("2023-01-01"), Tom: dato("2023-02-28")},
		{Fom: dato("2023-01-15"), Tom: dato("2023-01-31")},
		{Fom: dato("2023-02-01"), Tom: dato("2023-03-15")},
	}

	for _, perioder := range lister {
		for _, vindu := range vinduer {
			_, err := regler.BuildComplete(perioder, vindu.Fom, vindu.Tom)

			lenient, lerr := regler.BuildWithDefault(perioder, nil)
			require.NoError(t, lerr)
			allCovered := true
			for _, d := range vindu.Dager() {
				if _, err := lenient.VerdiPaaDato(d); err != nil {
					allCovered = false
					break
				}
			}

			assert.Equal(t, allCovered, err == nil, "periods %v window %s", perioder, vindu)
		}
	}
}

// =============================================================================
// BUILD WITH DEFAULT
// =============================================================================

func TestBuildWithDefault_RejectsOverlapAndEmpty(t *testing.T) {
	_, err := regler.BuildWithDefault([]regler.Periode[int]{
		periode(1, "2023-01-01", nil),
		periode(2, "2023-02-01", nil),
	}, func(regler.Dato, regler.Dato, *regler.Dato) int { return 0 })
	assert.ErrorIs(t, err, regler.ErrOverlappingPeriods)

	_, err = regler.BuildWithDefault(nil, func(regler.Dato, regler.Dato, *regler.Dato) int { return 0 })
	assert.True(t, errors.Is(err, regler.ErrNoPeriods))
}

func TestBuildWithDefault_DefaultReceivesBounds(t *testing.T) {
	var (
		gotFom regler.Dato
		gotTom *regler.Dato
	)
	pg, err := regler.BuildWithDefault([]regler.Periode[int]{
		periode(1, "2023-01-01", tom("2023-01-31")),
		periode(2, "2023-03-01", tom("2023-03-31")),
	}, func(_ regler.Dato, fom regler.Dato, til *regler.Dato) int {
		gotFom, gotTom = fom, til
		return -1
	})
	require.NoError(t, err)

	v, err := pg.VerdiPaaDato(dato("2023-02-10"))
	require.NoError(t, err)
	assert.Equal(t, -1, v, "gap resolved by default")
	assert.Equal(t, dato("2023-01-01"), gotFom)
	require.NotNil(t, gotTom)
	assert.Equal(t, dato("2023-03-31"), *gotTom)
}
