/*
motor.go - Evaluation engine

PURPOSE:
  Evaluates a rule across a closed window by slicing the window at every
  knekkpunkt of the grunnlag, so each sub-period sees constant inputs.

KEY INSIGHT:
  A periodized source can only change value at its knekkpunkter. Between two
  consecutive knekkpunkter every source is constant, so evaluating the rule
  once per slice gives the exact result for every day in the slice.

EVALUATION STEPS:
  1. Validity: every rule in the tree must be valid from the window's Fom,
     otherwise the result is UgyldigPeriode naming the offending rules
  2. Collect knekkpunkter from the grunnlag
  3. Clip them to the window, always including the window's Fom
  4. Partition the window into contiguous sub-periods
  5. Evaluate the rule once per sub-period
  6. Return Beregnet with one result per sub-period

CONCURRENCY:
  Kjoer allocates no shared state. A Motor may be used from many goroutines.

EXAMPLE:
  motor := regler.NyMotor(regler.MedRegelVersjon("1.4.0"))
  res, err := regler.Kjoer(motor, beregnetTrygdetid, grunnlag, periode)
  if err != nil {
      return err // rule failure, a programming error
  }
  regler.Match(res, visResultat, visUgyldigPeriode)

SEE ALSO:
  - resultat.go: Result types
  - periodisert.go: Knekkpunkt sources
*/
package regler

import (
	"log/slog"
	"time"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler/metrics"
)

// =============================================================================
// MOTOR - Shared, read-only evaluation settings
// =============================================================================

// Motor holds the ambient dependencies of an evaluation. The zero value is
// usable: it logs to slog.Default and records no metrics.
type Motor struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	RegelVersjon string
	Klokke       func() time.Time
}

// Option configures a Motor.
type Option func(*Motor)

func MedLogger(l *slog.Logger) Option { return func(m *Motor) { m.Logger = l } }
func MedMetrics(mt *metrics.Metrics) Option { return func(m *Motor) { m.Metrics = mt } }
func MedRegelVersjon(v string) Option { return func(m *Motor) { m.RegelVersjon = v } }
func MedKlokke(klokke func() time.Time) Option { return func(m *Motor) { m.Klokke = klokke } }

// NyMotor returns a Motor with opts applied.
func NyMotor(opts ...Option) *Motor {
	m := &Motor{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Motor) logger() *slog.Logger {
	if m == nil || m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *Motor) naa() time.Time {
	if m == nil || m.Klokke == nil {
		return time.Now()
	}
	return m.Klokke()
}

func (m *Motor) metrics() *metrics.Metrics {
	if m == nil {
		return nil
	}
	return m.Metrics
}

func (m *Motor) regelVersjon() string {
	if m == nil {
		return ""
	}
	return m.RegelVersjon
}

// =============================================================================
// KJOER - Evaluate a rule across a window
// =============================================================================

// Kjoer evaluates regel over periode. A rule that is not yet valid at
// periode.Fom yields *UgyldigPeriode. The error return is reserved for
// failures inside a rule, which abort the whole run.
func Kjoer[G KnekkpunktKilde, T any](m *Motor, regel *Regel[G, T], grunnlag G, periode RegelPeriode) (Resultat[T], error) {
	start := time.Now()
	log := m.logger().With("regel", regel.ID(), "fom", periode.Fom.String(), "tom", periode.Tom.String())
	defer func() { m.metrics().ObserveVarighet(time.Since(start)) }()

	if periode.Tom.Before(periode.Fom) {
		m.metrics().IncrementKjoering(metrics.StatusFeil)
		return nil, &UgyldigPeriodeError{Fom: periode.Fom, Tom: periode.Tom}
	}

	if ugyldige := UgyldigeRegler(regel, periode.Fom); len(ugyldige) > 0 {
		log.Info("rules not valid for period", "regler", ugyldige)
		m.metrics().IncrementKjoering(metrics.StatusUgyldigPeriode)
		return &UgyldigPeriode[T]{Periode: periode, RegelIDer: ugyldige}, nil
	}

	delperioder := Delperioder(periode, grunnlag.Knekkpunkter())
	m.metrics().ObserveDelperioder(len(delperioder))
	log.Debug("evaluating rule", "delperioder", len(delperioder))

	versjon := m.regelVersjon()
	if versjon == "" {
		versjon = regel.Meta().Versjon
	}

	evaluert := m.naa()
	resultater := make([]PeriodisertResultat[T], 0, len(delperioder))
	for _, dp := range delperioder {
		faktum, err := regel.Anvend(grunnlag, dp)
		if err != nil {
			log.Error("rule evaluation failed", "delperiode", dp.String(), "error", err)
			m.metrics().IncrementKjoering(metrics.StatusFeil)
			return nil, err
		}
		resultater = append(resultater, PeriodisertResultat[T]{
			Periode:      dp,
			Resultat:     faktum,
			Evaluert:     evaluert,
			RegelVersjon: versjon,
		})
	}

	m.metrics().IncrementKjoering(metrics.StatusBeregnet)
	return &Beregnet[T]{Perioder: resultater}, nil
}

// Delperioder partitions periode at the knekkpunkter inside it. The result is
// contiguous, ordered, starts at periode.Fom and ends at periode.Tom.
func Delperioder(periode RegelPeriode, knekkpunkter []Dato) []RegelPeriode {
	sett := map[Dato]struct{}{periode.Fom: {}}
	for _, k := range knekkpunkter {
		if k.After(periode.Fom) && k.BeforeOrEqual(periode.Tom) {
			sett[k] = struct{}{}
		}
	}
	starter := sorterteDatoer(sett)

	delperioder := make([]RegelPeriode, len(starter))
	for i, fom := range starter {
		tom := periode.Tom
		if i+1 < len(starter) {
			tom = starter[i+1].AddDays(-1)
		}
		delperioder[i] = RegelPeriode{Fom: fom, Tom: tom}
	}
	return delperioder
}
