package kjoering

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/factory"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
)

// Tjeneste runs rules and stores every outcome.
type Tjeneste struct {
	lager  Lager
	motor  *regler.Motor
	logger *slog.Logger
	klokke func() time.Time
	nyID   func() uuid.UUID
}

// NyTjeneste creates a service. A nil logger discards output.
func NyTjeneste(lager Lager, motor *regler.Motor, logger *slog.Logger) *Tjeneste {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tjeneste{
		lager:  lager,
		motor:  motor,
		logger: logger,
		klokke: func() time.Time { return time.Now().UTC() },
		nyID:   uuid.New,
	}
}

// Motor returns the engine used for every run.
func (t *Tjeneste) Motor() *regler.Motor { return t.motor }

// KjoerRegelsett builds the grunnlag for periode, evaluates the rule set's
// result rule and stores the run. Periodization and rule set errors are
// client errors (factory.IsClientError); nothing is stored for them.
func (t *Tjeneste) KjoerRegelsett(ctx context.Context, rs *factory.Regelsett, felter factory.GrunnlagJSON, periode regler.RegelPeriode) (*Kjoering, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := factory.ByggGrunnlag(felter, periode)
	if err != nil {
		return nil, err
	}
	if err := rs.ValiderGrunnlag(g); err != nil {
		return nil, err
	}

	res, err := regler.Kjoer(t.motor, rs.Resultat, g, periode)
	if err != nil {
		return nil, err
	}

	k := FraResultat(res, rs.Resultat.ID(), periode)
	k.RegelsettID = rs.ID
	k.RegelsettVersjon = rs.Versjon
	return t.lagre(ctx, k)
}

// Jobb is one rule set evaluation in a batch.
type Jobb struct {
	Regelsett *factory.Regelsett
	Grunnlag  factory.GrunnlagJSON
	Periode   regler.RegelPeriode
}

// KjoerFlere runs jobs with at most parallelitet evaluations in flight and
// returns the runs in job order. The first error cancels the rest; runs
// already stored are kept.
func (t *Tjeneste) KjoerFlere(ctx context.Context, jobber []Jobb, parallelitet int) ([]*Kjoering, error) {
	g, ctx := errgroup.WithContext(ctx)
	if parallelitet > 0 {
		g.SetLimit(parallelitet)
	}

	out := make([]*Kjoering, len(jobber))
	for i, j := range jobber {
		g.Go(func() error {
			k, err := t.KjoerRegelsett(ctx, j.Regelsett, j.Grunnlag, j.Periode)
			if err != nil {
				return fmt.Errorf("jobb %d: %w", i, err)
			}
			out[i] = k
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Registrer stores a result computed outside the service, e.g. by one of the
// typed rule packages.
func Registrer[T any](ctx context.Context, t *Tjeneste, regelsettID, regelID string, res regler.Resultat[T], periode regler.RegelPeriode) (*Kjoering, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := FraResultat(res, regelID, periode)
	k.RegelsettID = regelsettID
	return t.lagre(ctx, k)
}

// Hent returns a stored run.
func (t *Tjeneste) Hent(ctx context.Context, id uuid.UUID) (*Kjoering, error) {
	return t.lager.Hent(ctx, id)
}

// List returns stored runs, newest first.
func (t *Tjeneste) List(ctx context.Context, filter Filter) ([]Kjoering, error) {
	return t.lager.List(ctx, filter)
}

func (t *Tjeneste) lagre(ctx context.Context, k Kjoering) (*Kjoering, error) {
	k.ID = t.nyID()
	k.Evaluert = t.klokke()

	if err := t.lager.Lagre(ctx, k); err != nil {
		return nil, fmt.Errorf("failed to store kjoering: %w", err)
	}

	t.logger.InfoContext(ctx, "kjoering lagret",
		slog.String("id", k.ID.String()),
		slog.String("regelsett", k.RegelsettID),
		slog.String("regel", k.RegelID),
		slog.String("periode", k.Periode.String()),
		slog.String("status", string(k.Status)),
		slog.Int("delperioder", len(k.Perioder)),
	)
	return &k, nil
}
