package regler

// =============================================================================
// PERIODE - Inclusive date range carrying data
// =============================================================================

// Periode pairs Data with the inclusive range [Fom, Tom]. A nil Tom means the
// period is open-ended.
type Periode[T any] struct {
	Data T
	Fom  Dato
	Tom  *Dato
}

// NyPeriode returns a validated period. tom may be nil.
func NyPeriode[T any](data T, fom Dato, tom *Dato) (Periode[T], error) {
	p := Periode[T]{Data: data, Fom: fom, Tom: tom}
	if err := p.Valider(); err != nil {
		return Periode[T]{}, err
	}
	return p, nil
}

// Valider checks Fom <= Tom.
func (p Periode[T]) Valider() error {
	if p.Tom != nil && p.Tom.Before(p.Fom) {
		return &UgyldigPeriodeError{Fom: p.Fom, Tom: *p.Tom}
	}
	return nil
}

// ErApen returns true for an open-ended period.
func (p Periode[T]) ErApen() bool { return p.Tom == nil }

// Inneholder returns true if d is within [Fom, Tom].
func (p Periode[T]) Inneholder(d Dato) bool {
	if d.Before(p.Fom) {
		return false
	}
	return p.Tom == nil || d.BeforeOrEqual(*p.Tom)
}

func (p Periode[T]) String() string {
	if p.Tom == nil {
		return "[" + p.Fom.String() + ", )"
	}
	return "[" + p.Fom.String() + ", " + p.Tom.String() + "]"
}

// =============================================================================
// REGELPERIODE - The caller's closed evaluation window
// =============================================================================

// RegelPeriode is the closed window a rule is evaluated over. Open-ended
// business facts must be resolved to a concrete Tom before evaluation.
type RegelPeriode struct {
	Fom Dato `json:"fom"`
	Tom Dato `json:"tom"`
}

// NyRegelPeriode returns a validated evaluation window.
func NyRegelPeriode(fom, tom Dato) (RegelPeriode, error) {
	if tom.Before(fom) {
		return RegelPeriode{}, &UgyldigPeriodeError{Fom: fom, Tom: tom}
	}
	return RegelPeriode{Fom: fom, Tom: tom}, nil
}

// Inneholder returns true if d is within [Fom, Tom].
func (p RegelPeriode) Inneholder(d Dato) bool {
	return d.AfterOrEqual(p.Fom) && d.BeforeOrEqual(p.Tom)
}

// Dager returns all days in the window.
func (p RegelPeriode) Dager() []Dato {
	var days []Dato
	for current := p.Fom; current.BeforeOrEqual(p.Tom); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p RegelPeriode) String() string {
	return "[" + p.Fom.String() + ", " + p.Tom.String() + "]"
}
