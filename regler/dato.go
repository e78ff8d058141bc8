package regler

import (
	"fmt"
	"time"
)

// =============================================================================
// DATO - Day-granular date, the only time unit the engine knows about
// =============================================================================

const datoFormat = "2006-01-02"

// Dato is a calendar date at UTC midnight. Values built through NyDato or
// ParseDato are comparable with == and can be used as map keys.
type Dato struct {
	Time time.Time
}

// NyDato returns the date y-m-d.
func NyDato(year int, month time.Month, day int) Dato {
	return Dato{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DatoFraTid truncates t to its calendar date.
func DatoFraTid(t time.Time) Dato {
	return NyDato(t.Year(), t.Month(), t.Day())
}

// ParseDato parses an ISO-8601 date (2006-01-02).
func ParseDato(s string) (Dato, error) {
	t, err := time.Parse(datoFormat, s)
	if err != nil {
		return Dato{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DatoFraTid(t), nil
}

// MustParseDato is ParseDato for literals in tests and fixtures.
func MustParseDato(s string) Dato {
	d, err := ParseDato(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Dato) Before(other Dato) bool { return d.Time.Before(other.Time) }
func (d Dato) After(other Dato) bool { return d.Time.After(other.Time) }
func (d Dato) Equal(other Dato) bool { return d.Time.Equal(other.Time) }
func (d Dato) BeforeOrEqual(other Dato) bool { return !d.After(other) }
func (d Dato) AfterOrEqual(other Dato) bool { return !d.Before(other) }

// Arithmetic
func (d Dato) AddDays(n int) Dato { return DatoFraTid(d.Time.AddDate(0, 0, n)) }

// Properties
func (d Dato) Year() int { return d.Time.Year() }
func (d Dato) Month() time.Month { return d.Time.Month() }
func (d Dato) Day() int { return d.Time.Day() }
func (d Dato) IsZero() bool { return d.Time.IsZero() }

func (d Dato) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(datoFormat)
}

// MarshalText encodes the date as 2006-01-02.
func (d Dato) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a 2006-01-02 date. An empty value yields the zero date.
func (d *Dato) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Dato{}
		return nil
	}
	parsed, err := ParseDato(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DagerMellom returns the number of days from fom to tom (negative if tom is earlier).
func DagerMellom(fom, tom Dato) int {
	return int(tom.Time.Sub(fom.Time).Hours() / 24)
}

// Ptr returns a pointer to d, convenient for open-ended Tom fields.
func (d Dato) Ptr() *Dato { return &d }
