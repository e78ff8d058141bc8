/*
Package kjoering records rule evaluations.

PURPOSE:
  A Kjoering is one evaluation of a rule over a window, stored in untyped
  form so it can be listed, fetched and audited after the typed result is
  gone. Every stored sub-period keeps its full fact trace.

KEY TYPES:
  Kjoering: The stored run
  Lager:    Persistence interface (memory and SQLite implementations)
  Tjeneste: Runs rule sets and stores the outcome

IMPLEMENTATIONS:
  - kjoering/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go:   SQLite

SEE ALSO:
  - regler/resultat.go: The typed result a Kjoering is built from
  - factory/: Rule sets run by Tjeneste
*/
package kjoering

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrKjoeringNotFound is returned when no run has the requested id.
	ErrKjoeringNotFound = errors.New("kjoering not found")

	// ErrKjoeringFinnes is returned when storing a run whose id is taken.
	ErrKjoeringFinnes = errors.New("kjoering already exists")
)

// =============================================================================
// KJOERING
// =============================================================================

type Status string

const (
	StatusBeregnet       Status = "BEREGNET"
	StatusUgyldigPeriode Status = "UGYLDIG_PERIODE"
)

// Kjoering is a stored evaluation.
type Kjoering struct {
	ID               uuid.UUID                `json:"id"`
	RegelsettID      string                   `json:"regelsett_id"`
	RegelsettVersjon string                   `json:"regelsett_versjon,omitempty"`
	RegelID          string                   `json:"regel_id"`
	Periode          regler.RegelPeriode      `json:"periode"`
	Status           Status                   `json:"status"`
	Evaluert         time.Time                `json:"evaluert"`
	RegelVersjon     string                   `json:"regel_versjon,omitempty"`
	UgyldigeRegler   []string                 `json:"ugyldige_regler,omitempty"`
	Perioder         []regler.PeriodisertSpor `json:"perioder,omitempty"`
}

// FraResultat converts a typed result. ID and Evaluert are left for the
// caller to set.
func FraResultat[T any](res regler.Resultat[T], regelID string, periode regler.RegelPeriode) Kjoering {
	k := Kjoering{RegelID: regelID, Periode: periode}
	regler.Match(res,
		func(b *regler.Beregnet[T]) struct{} {
			k.Status = StatusBeregnet
			k.Perioder = b.Spor()
			if len(b.Perioder) > 0 {
				k.RegelVersjon = b.Perioder[0].RegelVersjon
			}
			return struct{}{}
		},
		func(u *regler.UgyldigPeriode[T]) struct{} {
			k.Status = StatusUgyldigPeriode
			k.UgyldigeRegler = append([]string(nil), u.RegelIDer...)
			return struct{}{}
		})
	return k
}

// Kopi returns a copy that shares no slices with k.
func (k Kjoering) Kopi() Kjoering {
	k.UgyldigeRegler = append([]string(nil), k.UgyldigeRegler...)
	k.Perioder = append([]regler.PeriodisertSpor(nil), k.Perioder...)
	return k
}

// =============================================================================
// LAGER - Interface for run persistence
// =============================================================================

// Filter narrows List. Zero values match everything.
type Filter struct {
	RegelsettID string
	Status      Status
	Limit       int
}

// Matcher reports whether k passes the filter, ignoring Limit.
func (f Filter) Matcher(k Kjoering) bool {
	if f.RegelsettID != "" && k.RegelsettID != f.RegelsettID {
		return false
	}
	if f.Status != "" && k.Status != f.Status {
		return false
	}
	return true
}

// Lager persists runs. Runs are never updated.
type Lager interface {
	// Lagre stores a run. Returns ErrKjoeringFinnes if the id is taken.
	Lagre(ctx context.Context, k Kjoering) error

	// Hent returns a run or ErrKjoeringNotFound.
	Hent(ctx context.Context, id uuid.UUID) (*Kjoering, error)

	// List returns matching runs, newest first.
	List(ctx context.Context, filter Filter) ([]Kjoering, error)
}
