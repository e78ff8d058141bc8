/*
handlers.go - HTTP API handlers for the rule evaluation service

PURPOSE:
  Exposes rule evaluation via REST API. Handles HTTP request/response and
  JSON serialization, and delegates to kjoering.Tjeneste for the actual runs.

ENDPOINTS:
  Health:
    GET    /api/helse                    Liveness and store ping

  Rule sets:
    GET    /api/regelsett                List registered rule sets

  Runs:
    POST   /api/regelkjoeringer          Evaluate a rule set over a window
    GET    /api/regelkjoeringer          List runs (?regelsett=, ?status=, ?limit=)
    GET    /api/regelkjoeringer/{id}     Get one run with its traces

  Scenarios:
    GET    /api/scenarier                List demo scenarios
    POST   /api/scenarier/{id}/kjoer     Run a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Tjeneste: Runs rules and stores the outcome
  - Factory: JSON to rule set compilation
  - Registered rule sets, compiled once

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, malformed rule set, periodization errors
  - 404: Run, rule set or scenario not found
  - 422: A rule failed while evaluating
  - 500: Internal errors

  An invalid period is not an error. The run is stored and returned with
  status UGYLDIG_PERIODE.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenarios
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/factory"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/kjoering"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
)

// StandardRegelsett is the id the built-in children's pension rule set is
// registered under.
const StandardRegelsett = "barnepensjon"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Tjeneste *kjoering.Tjeneste
	Factory  *factory.RegelsettFactory
	Logger   *slog.Logger

	pinger    Pinger
	mu        sync.RWMutex
	regelsett map[string]*factory.Regelsett
}

// NewHandler creates a handler with the built-in rule set registered. pinger
// may be nil.
func NewHandler(tj *kjoering.Tjeneste, pinger Pinger, logger *slog.Logger) (*Handler, error) {
	h := &Handler{
		Tjeneste:  tj,
		Factory:   factory.NewRegelsettFactory(),
		Logger:    logger,
		pinger:    pinger,
		regelsett: make(map[string]*factory.Regelsett),
	}

	rs, err := h.Factory.ParseRegelsett(factory.BarnepensjonRegelsettJSON(StandardRegelsett, "2021.1"))
	if err != nil {
		return nil, fmt.Errorf("built-in rule set: %w", err)
	}
	h.Registrer(rs)
	return h, nil
}

// Registrer makes a compiled rule set available by id, replacing any rule set
// with the same id.
func (h *Handler) Registrer(rs *factory.Regelsett) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.regelsett[rs.ID] = rs
}

func (h *Handler) hentRegelsett(id string) (*factory.Regelsett, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rs, ok := h.regelsett[id]
	return rs, ok
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.Logger
}

// =============================================================================
// HEALTH
// =============================================================================

// Helse reports whether the service and its store are reachable.
func (h *Handler) Helse(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, HelseDTO{Status: "ok"})
}

// =============================================================================
// RULE SETS
// =============================================================================

// ListRegelsett returns the registered rule sets sorted by id.
func (h *Handler) ListRegelsett(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	result := make([]RegelsettDTO, 0, len(h.regelsett))
	for _, rs := range h.regelsett {
		result = append(result, toRegelsettDTO(rs))
	}
	h.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// RUNS
// =============================================================================

// KjoerRegelsett evaluates a registered or inline rule set.
func (h *Handler) KjoerRegelsett(w http.ResponseWriter, r *http.Request) {
	var req KjoerRegelsettRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	periode, err := parsePeriode(req.Periode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid periode", err)
		return
	}

	var rs *factory.Regelsett
	switch {
	case req.Regelsett != nil && req.RegelsettID != "":
		writeError(w, http.StatusBadRequest, "Give either regelsett_id or regelsett, not both", nil)
		return
	case req.Regelsett != nil:
		rs, err = h.Factory.FromJSON(*req.Regelsett)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid regelsett", err)
			return
		}
	case req.RegelsettID != "":
		var ok bool
		rs, ok = h.hentRegelsett(req.RegelsettID)
		if !ok {
			writeError(w, http.StatusNotFound, "Regelsett not found", fmt.Errorf("no rule set with id %q", req.RegelsettID))
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "regelsett_id or regelsett is required", nil)
		return
	}

	k, err := h.Tjeneste.KjoerRegelsett(r.Context(), rs, req.Grunnlag, periode)
	if err != nil {
		h.writeKjoeringError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toKjoeringDTO(k))
}

// ListKjoeringer returns stored runs, newest first.
func (h *Handler) ListKjoeringer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := kjoering.Filter{
		RegelsettID: q.Get("regelsett"),
		Status:      kjoering.Status(q.Get("status")),
	}
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		filter.Limit = limit
	}

	runs, err := h.Tjeneste.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list kjoeringer", err)
		return
	}

	result := make([]KjoeringDTO, len(runs))
	for i := range runs {
		result[i] = toKjoeringDTO(&runs[i])
	}
	writeJSON(w, http.StatusOK, result)
}

// HentKjoering returns one run.
func (h *Handler) HentKjoering(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid kjoering id", err)
		return
	}

	k, err := h.Tjeneste.Hent(r.Context(), id)
	if err != nil {
		if errors.Is(err, kjoering.ErrKjoeringNotFound) {
			writeError(w, http.StatusNotFound, "Kjoering not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get kjoering", err)
		return
	}
	writeJSON(w, http.StatusOK, toKjoeringDTO(k))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) writeKjoeringError(w http.ResponseWriter, r *http.Request, err error) {
	var regelFeil *regler.RegelFeil
	switch {
	case factory.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid grunnlag or periode", err)
	case errors.As(err, &regelFeil):
		writeError(w, http.StatusUnprocessableEntity, "Rule evaluation failed", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled", err)
	default:
		h.logger().ErrorContext(r.Context(), "kjoering failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Kjoering failed", err)
	}
}

func parsePeriode(p PeriodeDTO) (regler.RegelPeriode, error) {
	if p.Fom.IsZero() || p.Tom.IsZero() {
		return regler.RegelPeriode{}, errors.New("periode.fom and periode.tom are required")
	}
	return regler.NyRegelPeriode(p.Fom, p.Tom)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
