/*
Package sqlite provides a SQLite-backed implementation of kjoering.Lager.

PURPOSE:
  Persists evaluation runs so they can be listed and audited after the
  process that computed them is gone. Every sub-period is stored with its
  full fact trace as JSON.

KEY TABLES:
  regelkjoering:    One row per run
  periode_resultat: One row per evaluated sub-period, with the trace

APPEND-ONLY:
  Runs are never updated. A recalculation is a new run with a new id.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/regler.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  tjeneste := kjoering.NyTjeneste(store, motor, logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - kjoering/kjoering.go: Lager interface
  - kjoering/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/kjoering"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
)

// Store implements kjoering.Lager using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ kjoering.Lager = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS regelkjoering (
		sekvens INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		regelsett_id TEXT NOT NULL,
		regelsett_versjon TEXT,
		regel_id TEXT NOT NULL,
		fom TEXT NOT NULL,
		tom TEXT NOT NULL,
		status TEXT NOT NULL,
		evaluert TEXT NOT NULL,
		regel_versjon TEXT,
		ugyldige_regler_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_regelkjoering_regelsett
		ON regelkjoering(regelsett_id);
	CREATE INDEX IF NOT EXISTS idx_regelkjoering_status
		ON regelkjoering(status);

	CREATE TABLE IF NOT EXISTS periode_resultat (
		kjoering_id TEXT NOT NULL REFERENCES regelkjoering(id) ON DELETE CASCADE,
		indeks INTEGER NOT NULL,
		fom TEXT NOT NULL,
		tom TEXT NOT NULL,
		evaluert TEXT NOT NULL,
		regel_versjon TEXT,
		spor_json TEXT NOT NULL,
		PRIMARY KEY (kjoering_id, indeks)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LAGER IMPLEMENTATION
// =============================================================================

// Lagre stores a run and its sub-periods atomically.
func (s *Store) Lagre(ctx context.Context, k kjoering.Kjoering) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ugyldigeJSON, err := json.Marshal(k.UgyldigeRegler)
	if err != nil {
		return fmt.Errorf("failed to marshal ugyldige regler: %w", err)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO regelkjoering
		(id, regelsett_id, regelsett_versjon, regel_id, fom, tom, status,
		 evaluert, regel_versjon, ugyldige_regler_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		k.ID.String(),
		k.RegelsettID,
		nullString(k.RegelsettVersjon),
		k.RegelID,
		k.Periode.Fom.String(),
		k.Periode.Tom.String(),
		string(k.Status),
		k.Evaluert.UTC().Format(time.RFC3339Nano),
		nullString(k.RegelVersjon),
		string(ugyldigeJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return kjoering.ErrKjoeringFinnes
		}
		return fmt.Errorf("failed to insert kjoering: %w", err)
	}

	for i, p := range k.Perioder {
		sporJSON, err := json.Marshal(p.Spor)
		if err != nil {
			return fmt.Errorf("failed to marshal spor: %w", err)
		}
		_, err = sqlTx.ExecContext(ctx, `
			INSERT INTO periode_resultat
			(kjoering_id, indeks, fom, tom, evaluert, regel_versjon, spor_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			k.ID.String(),
			i,
			p.Periode.Fom.String(),
			p.Periode.Tom.String(),
			p.Evaluert.UTC().Format(time.RFC3339Nano),
			nullString(p.RegelVersjon),
			string(sporJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert periode_resultat: %w", err)
		}
	}

	return sqlTx.Commit()
}

// Hent returns a run with its sub-periods.
func (s *Store) Hent(ctx context.Context, id uuid.UUID) (*kjoering.Kjoering, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, err := s.queryKjoeringer(ctx, `
		SELECT id, regelsett_id, regelsett_versjon, regel_id, fom, tom, status,
		       evaluert, regel_versjon, ugyldige_regler_json
		FROM regelkjoering
		WHERE id = ?
	`, id.String())
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, kjoering.ErrKjoeringNotFound
	}

	k := runs[0]
	if k.Perioder, err = s.queryPerioder(ctx, k.ID); err != nil {
		return nil, err
	}
	return &k, nil
}

// List returns runs newest first, with their sub-periods.
func (s *Store) List(ctx context.Context, filter kjoering.Filter) ([]kjoering.Kjoering, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if filter.RegelsettID != "" {
		where = append(where, "regelsett_id = ?")
		args = append(args, filter.RegelsettID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `
		SELECT id, regelsett_id, regelsett_versjon, regel_id, fom, tom, status,
		       evaluert, regel_versjon, ugyldige_regler_json
		FROM regelkjoering`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := -1
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	query += " ORDER BY sekvens DESC LIMIT ?"
	args = append(args, limit)

	runs, err := s.queryKjoeringer(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].Perioder, err = s.queryPerioder(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) queryKjoeringer(ctx context.Context, query string, args ...any) ([]kjoering.Kjoering, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query kjoeringer: %w", err)
	}
	defer rows.Close()

	var result []kjoering.Kjoering
	for rows.Next() {
		var (
			k                              kjoering.Kjoering
			id, fom, tom, status, evaluert string
			regelsettVersjon, regelVersjon sql.NullString
			ugyldigeJSON                   sql.NullString
		)
		err := rows.Scan(&id, &k.RegelsettID, &regelsettVersjon, &k.RegelID, &fom, &tom,
			&status, &evaluert, &regelVersjon, &ugyldigeJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kjoering: %w", err)
		}

		if k.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid kjoering id %q: %w", id, err)
		}
		if k.Periode, err = parsePeriode(fom, tom); err != nil {
			return nil, err
		}
		if k.Evaluert, err = time.Parse(time.RFC3339Nano, evaluert); err != nil {
			return nil, fmt.Errorf("invalid evaluert %q: %w", evaluert, err)
		}
		k.Status = kjoering.Status(status)
		k.RegelsettVersjon = regelsettVersjon.String
		k.RegelVersjon = regelVersjon.String
		if ugyldigeJSON.Valid && ugyldigeJSON.String != "null" {
			if err := json.Unmarshal([]byte(ugyldigeJSON.String), &k.UgyldigeRegler); err != nil {
				return nil, fmt.Errorf("invalid ugyldige_regler_json: %w", err)
			}
		}
		result = append(result, k)
	}
	return result, rows.Err()
}

func (s *Store) queryPerioder(ctx context.Context, id uuid.UUID) ([]regler.PeriodisertSpor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fom, tom, evaluert, regel_versjon, spor_json
		FROM periode_resultat
		WHERE kjoering_id = ?
		ORDER BY indeks ASC
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query periode_resultat: %w", err)
	}
	defer rows.Close()

	var result []regler.PeriodisertSpor
	for rows.Next() {
		var (
			p                        regler.PeriodisertSpor
			fom, tom, evaluert, spor string
			regelVersjon             sql.NullString
		)
		if err := rows.Scan(&fom, &tom, &evaluert, &regelVersjon, &spor); err != nil {
			return nil, fmt.Errorf("failed to scan periode_resultat: %w", err)
		}
		if p.Periode, err = parsePeriode(fom, tom); err != nil {
			return nil, err
		}
		if p.Evaluert, err = time.Parse(time.RFC3339Nano, evaluert); err != nil {
			return nil, fmt.Errorf("invalid evaluert %q: %w", evaluert, err)
		}
		p.RegelVersjon = regelVersjon.String
		if err := json.Unmarshal([]byte(spor), &p.Spor); err != nil {
			return nil, fmt.Errorf("invalid spor_json: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Reset deletes all data. For tests and demos only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"periode_resultat", "regelkjoering"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func parsePeriode(fom, tom string) (regler.RegelPeriode, error) {
	f, err := regler.ParseDato(fom)
	if err != nil {
		return regler.RegelPeriode{}, fmt.Errorf("invalid fom %q: %w", fom, err)
	}
	t, err := regler.ParseDato(tom)
	if err != nil {
		return regler.RegelPeriode{}, fmt.Errorf("invalid tom %q: %w", tom, err)
	}
	return regler.RegelPeriode{Fom: f, Tom: t}, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
