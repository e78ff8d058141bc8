/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  stored kjoering.Kjoering.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - factory/: RegelsettJSON and GrunnlagJSON
*/
package api

import (
	"time"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/factory"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/kjoering"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PeriodeDTO is a closed window, both dates inclusive.
type PeriodeDTO struct {
	Fom regler.Dato `json:"fom"`
	Tom regler.Dato `json:"tom"`
}

// KjoerRegelsettRequest runs either a registered rule set (RegelsettID) or
// one supplied inline (Regelsett).
type KjoerRegelsettRequest struct {
	RegelsettID string                 `json:"regelsett_id,omitempty"`
	Regelsett   *factory.RegelsettJSON `json:"regelsett,omitempty"`
	Grunnlag    factory.GrunnlagJSON   `json:"grunnlag"`
	Periode     PeriodeDTO             `json:"periode"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// KjoeringDTO is an evaluation run.
type KjoeringDTO struct {
	ID               string               `json:"id"`
	RegelsettID      string               `json:"regelsett_id"`
	RegelsettVersjon string               `json:"regelsett_versjon,omitempty"`
	RegelID          string               `json:"regel_id"`
	Periode          PeriodeDTO           `json:"periode"`
	Status           string               `json:"status"`
	Evaluert         time.Time            `json:"evaluert"`
	RegelVersjon     string               `json:"regel_versjon,omitempty"`
	UgyldigeRegler   []string             `json:"ugyldige_regler,omitempty"`
	Perioder         []PeriodeResultatDTO `json:"perioder"`
}

// PeriodeResultatDTO is the value computed for one sub-period and its trace.
type PeriodeResultatDTO struct {
	Periode PeriodeDTO  `json:"periode"`
	Verdi   any         `json:"verdi"`
	Spor    regler.Spor `json:"spor"`
}

// RegelsettDTO describes a registered rule set.
type RegelsettDTO struct {
	ID          string   `json:"id"`
	Versjon     string   `json:"versjon,omitempty"`
	Beskrivelse string   `json:"beskrivelse,omitempty"`
	Resultat    string   `json:"resultat"`
	Regler      []string `json:"regler"`
	Felter      []string `json:"felter"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Navn        string `json:"navn"`
	Beskrivelse string `json:"beskrivelse"`
	Kategori    string `json:"kategori"`
}

// HelseDTO is the health check response.
type HelseDTO struct {
	Status string `json:"status"`
}

// ErrorResponse is returned for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toKjoeringDTO(k *kjoering.Kjoering) KjoeringDTO {
	dto := KjoeringDTO{
		ID:               k.ID.String(),
		RegelsettID:      k.RegelsettID,
		RegelsettVersjon: k.RegelsettVersjon,
		RegelID:          k.RegelID,
		Periode:          PeriodeDTO{Fom: k.Periode.Fom, Tom: k.Periode.Tom},
		Status:           string(k.Status),
		Evaluert:         k.Evaluert,
		RegelVersjon:     k.RegelVersjon,
		UgyldigeRegler:   k.UgyldigeRegler,
		Perioder:         make([]PeriodeResultatDTO, len(k.Perioder)),
	}
	for i, p := range k.Perioder {
		dto.Perioder[i] = PeriodeResultatDTO{
			Periode: PeriodeDTO{Fom: p.Periode.Fom, Tom: p.Periode.Tom},
			Verdi:   p.Spor.Verdi,
			Spor:    p.Spor,
		}
	}
	return dto
}

func toRegelsettDTO(rs *factory.Regelsett) RegelsettDTO {
	return RegelsettDTO{
		ID:          rs.ID,
		Versjon:     rs.Versjon,
		Beskrivelse: rs.Beskrivelse,
		Resultat:    rs.Resultat.ID(),
		Regler:      rs.RegelIDer(),
		Felter:      rs.Felter(),
	}
}
