/*
feil.go - Error taxonomy for periodization and evaluation

PURPOSE:
  All periodization errors in one place. They are business-rule violations
  raised while a grunnlag is being built, before any rule runs, and are
  always recoverable by the caller.

ERROR CATEGORIES:
  1. Periodization errors - empty, overlapping or incomplete period lists
  2. Lookup errors - a date outside every period and no default value
  3. Malformed periods - Tom before Fom

  A rule that is not valid for the requested period is NOT an error. It is
  returned as data (UgyldigPeriode) from Kjoer, see resultat.go.

USAGE:
  grunnlag, err := regler.BuildComplete(perioder, fom, tom)
  if errors.Is(err, regler.ErrIncompletePeriods) {
      // tell the caseworker which window is missing data
  }

SEE ALSO:
  - validering.go: Raises the periodization errors
  - periodisert.go: Raises DatoUtenforPerioderError
*/
package regler

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoPeriods is returned when an empty period list is supplied where at
	// least one period is required.
	ErrNoPeriods = errors.New("no periods supplied")

	// ErrOverlappingPeriods is returned when two or more periods share a date.
	ErrOverlappingPeriods = errors.New("overlapping periods")

	// ErrIncompletePeriods is returned when the periods do not cover the whole
	// requested window.
	ErrIncompletePeriods = errors.New("periods do not cover the requested window")

	// ErrDateOutsidePeriods is returned when a lookup date is outside every
	// period and no default value function was supplied.
	ErrDateOutsidePeriods = errors.New("date outside all periods")

	// ErrInvalidPeriod is returned when a period is malformed (Tom before Fom).
	ErrInvalidPeriod = errors.New("invalid period: tom before fom")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PeriodiseringFeil describes why a period list was rejected.
type PeriodiseringFeil struct {
	Feil   error // one of the periodization sentinels
	Antall int   // number of periods supplied
	Fom    Dato  // requested window, zero when not applicable
	Tom    Dato
}

func (e *PeriodiseringFeil) Error() string {
	if e.Fom.IsZero() {
		return fmt.Sprintf("%v (%d periods)", e.Feil, e.Antall)
	}
	return fmt.Sprintf("%v (%d periods, window %s - %s)", e.Feil, e.Antall, e.Fom, e.Tom)
}

func (e *PeriodiseringFeil) Unwrap() error {
	return e.Feil
}

// DatoUtenforPerioderError is returned by VerdiPaaDato for uncovered dates.
type DatoUtenforPerioderError struct {
	Dato Dato
}

func (e *DatoUtenforPerioderError) Error() string {
	return fmt.Sprintf("no period covers %s", e.Dato)
}

func (e *DatoUtenforPerioderError) Unwrap() error {
	return ErrDateOutsidePeriods
}

// UgyldigPeriodeError describes a malformed period.
type UgyldigPeriodeError struct {
	Fom Dato
	Tom Dato
}

func (e *UgyldigPeriodeError) Error() string {
	return fmt.Sprintf("invalid period: tom %s before fom %s", e.Tom, e.Fom)
}

func (e *UgyldigPeriodeError) Unwrap() error {
	return ErrInvalidPeriod
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsPeriodiseringFeil returns true if err is raised by the period validator.
func IsPeriodiseringFeil(err error) bool {
	return errors.Is(err, ErrNoPeriods) ||
		errors.Is(err, ErrOverlappingPeriods) ||
		errors.Is(err, ErrIncompletePeriods)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return IsPeriodiseringFeil(err) ||
		errors.Is(err, ErrDateOutsidePeriods) ||
		errors.Is(err, ErrInvalidPeriod)
}
