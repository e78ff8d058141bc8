/*
Package factory provides JSON to Go rule set conversion.

PURPOSE:
  Converts JSON rule set definitions into regler.Regel trees. Each rule is
  a CEL expression over the grunnlag fields and earlier rules it names in
  "benytter". The factory compiles every expression up front, so a rule set
  that parses can always be evaluated.

JSON SCHEMA:
  {
    "id": "barnepensjon",
    "versjon": "2024.1",
    "beskrivelse": "Barnepensjon etter 2024-regelverket",
    "regler": [
      {
        "id": "full_trygdetid",
        "beskrivelse": "Årlig beløp ved full trygdetid",
        "gyldig_fra": "2024-01-01",
        "uttrykk": "grunnbeloep * 1.0",
        "benytter": ["grunnbeloep"]
      },
      {
        "id": "barnepensjon",
        "uttrykk": "full_trygdetid * trygdetid / 40.0",
        "benytter": ["full_trygdetid", "trygdetid"]
      }
    ],
    "resultat": "barnepensjon"
  }

  A name in "benytter" refers to an earlier rule if one has that id,
  otherwise to a grunnlag field. JSON numbers are CEL doubles: write 40.0,
  not 40, when combining them with literals.

USAGE:
  f := factory.NewRegelsettFactory()
  rs, err := f.ParseRegelsett(jsonStr)
  g, err := factory.ByggGrunnlag(felter, periode)
  res, err := regler.Kjoer(motor, rs.Resultat, g, periode)

SEE ALSO:
  - grunnlag.go: JSON grunnlag and DynamiskGrunnlag
  - regler/regel.go: Rule definition
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/google/cel-go/cel"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
)

// costLimit bounds the work a single expression evaluation may do.
const costLimit = 1000000

var (
	// ErrUgyldigRegelsett is returned when a rule set cannot be compiled.
	ErrUgyldigRegelsett = errors.New("invalid rule set")

	// ErrUgyldigGrunnlag is returned when a grunnlag field is malformed.
	ErrUgyldigGrunnlag = errors.New("invalid grunnlag")

	// ErrManglendeFelt is returned when a rule set needs a grunnlag field
	// that was not supplied.
	ErrManglendeFelt = errors.New("missing grunnlag field")
)

// KompileringsFeil reports which rule failed to compile. It matches both
// ErrUgyldigRegelsett and the underlying cause.
type KompileringsFeil struct {
	RegelID string
	Err     error
}

func (e *KompileringsFeil) Error() string {
	return fmt.Sprintf("rule %q: %v", e.RegelID, e.Err)
}

func (e *KompileringsFeil) Unwrap() []error { return []error{ErrUgyldigRegelsett, e.Err} }

// IsClientError returns true if err is caused by the caller's rule set or
// grunnlag.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUgyldigRegelsett) ||
		errors.Is(err, ErrUgyldigGrunnlag) ||
		errors.Is(err, ErrManglendeFelt) ||
		regler.IsClientError(err)
}

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RegelsettJSON is the JSON representation of a rule set.
type RegelsettJSON struct {
	ID          string      `json:"id"`
	Versjon     string      `json:"versjon,omitempty"`
	Beskrivelse string      `json:"beskrivelse,omitempty"`
	Regler      []RegelJSON `json:"regler"`
	Resultat    string      `json:"resultat,omitempty"` // Default: the last rule
}

// RegelJSON is one expression rule.
type RegelJSON struct {
	ID          string      `json:"id"`
	Beskrivelse string      `json:"beskrivelse,omitempty"`
	GyldigFra   regler.Dato `json:"gyldig_fra,omitempty"`
	Uttrykk     string      `json:"uttrykk"`
	Benytter    []string    `json:"benytter,omitempty"`
}

// =============================================================================
// REGELSETT
// =============================================================================

// DynamiskRegel is a rule evaluated against a DynamiskGrunnlag.
type DynamiskRegel = regler.Regel[*DynamiskGrunnlag, any]

// Regelsett is a compiled rule set. It is immutable and safe for concurrent
// use.
type Regelsett struct {
	ID          string
	Versjon     string
	Beskrivelse string
	Resultat    *DynamiskRegel

	regler map[string]*DynamiskRegel
	felter []string
}

// Regel returns a rule by id.
func (rs *Regelsett) Regel(id string) (*DynamiskRegel, bool) {
	r, ok := rs.regler[id]
	return r, ok
}

// RegelIDer returns the ids of all rules in the set, sorted.
func (rs *Regelsett) RegelIDer() []string {
	ider := make([]string, 0, len(rs.regler))
	for id := range rs.regler {
		ider = append(ider, id)
	}
	sort.Strings(ider)
	return ider
}

// Felter returns the grunnlag fields the rule set reads, sorted.
func (rs *Regelsett) Felter() []string {
	out := make([]string, len(rs.felter))
	copy(out, rs.felter)
	return out
}

// ValiderGrunnlag checks that g has every field the rule set reads.
func (rs *Regelsett) ValiderGrunnlag(g *DynamiskGrunnlag) error {
	for _, felt := range rs.felter {
		if _, ok := g.Felt(felt); !ok {
			return fmt.Errorf("%w: %q", ErrManglendeFelt, felt)
		}
	}
	return nil
}

// =============================================================================
// REGELSETT FACTORY
// =============================================================================

// RegelsettFactory converts JSON rule sets to compiled rule trees.
type RegelsettFactory struct{}

// NewRegelsettFactory creates a new rule set factory.
func NewRegelsettFactory() *RegelsettFactory {
	return &RegelsettFactory{}
}

// ParseRegelsett parses and compiles a JSON rule set.
func (f *RegelsettFactory) ParseRegelsett(jsonStr string) (*Regelsett, error) {
	var rj RegelsettJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, fmt.Errorf("failed to parse rule set JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON compiles a rule set.
func (f *RegelsettFactory) FromJSON(rj RegelsettJSON) (*Regelsett, error) {
	if rj.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrUgyldigRegelsett)
	}
	if len(rj.Regler) == 0 {
		return nil, fmt.Errorf("%w: %q has no rules", ErrUgyldigRegelsett, rj.ID)
	}

	rs := &Regelsett{
		ID:          rj.ID,
		Versjon:     rj.Versjon,
		Beskrivelse: rj.Beskrivelse,
		regler:      make(map[string]*DynamiskRegel, len(rj.Regler)),
	}
	feltRegler := make(map[string]*DynamiskRegel)

	for _, r := range rj.Regler {
		if err := validateIdentifier(r.ID); err != nil {
			return nil, &KompileringsFeil{RegelID: r.ID, Err: err}
		}
		if _, finnes := rs.regler[r.ID]; finnes {
			return nil, &KompileringsFeil{RegelID: r.ID, Err: errors.New("duplicate rule id")}
		}
		if _, brukt := feltRegler[r.ID]; brukt {
			return nil, &KompileringsFeil{RegelID: r.ID, Err: errors.New("id already used as a grunnlag field")}
		}

		avhengigheter := make([]*DynamiskRegel, len(r.Benytter))
		sett := make(map[string]bool, len(r.Benytter))
		for i, navn := range r.Benytter {
			if err := validateIdentifier(navn); err != nil {
				return nil, &KompileringsFeil{RegelID: r.ID, Err: fmt.Errorf("benytter %q: %w", navn, err)}
			}
			if sett[navn] {
				return nil, &KompileringsFeil{RegelID: r.ID, Err: fmt.Errorf("benytter %q listed twice", navn)}
			}
			if navn == r.ID {
				return nil, &KompileringsFeil{RegelID: r.ID, Err: errors.New("rule cannot use itself")}
			}
			sett[navn] = true
			if dep, ok := rs.regler[navn]; ok {
				avhengigheter[i] = dep
				continue
			}
			dep, ok := feltRegler[navn]
			if !ok {
				dep = feltRegel(navn)
				feltRegler[navn] = dep
			}
			avhengigheter[i] = dep
		}

		regel, err := kompiler(r, rj.Versjon, avhengigheter)
		if err != nil {
			return nil, &KompileringsFeil{RegelID: r.ID, Err: err}
		}
		rs.regler[r.ID] = regel
	}

	resultat := rj.Resultat
	if resultat == "" {
		resultat = rj.Regler[len(rj.Regler)-1].ID
	}
	regel, ok := rs.regler[resultat]
	if !ok {
		return nil, fmt.Errorf("%w: result rule %q is not defined", ErrUgyldigRegelsett, resultat)
	}
	rs.Resultat = regel

	for navn := range feltRegler {
		rs.felter = append(rs.felter, navn)
	}
	sort.Strings(rs.felter)

	return rs, nil
}

// feltRegel reads a grunnlag field. It is valid for every period.
func feltRegel(navn string) *DynamiskRegel {
	meta := regler.RegelMeta{ID: navn, Beskrivelse: "Grunnlag " + navn}
	return regler.FraGrunnlag(meta, func(g *DynamiskGrunnlag) regler.Kilde[regler.Faktum[any]] {
		k, _ := g.Felt(navn)
		return k
	})
}

// kompiler builds a CEL environment declaring only the rule's inputs, so an
// expression referring to anything else fails here and not at evaluation.
// Rules carry the rule set's version.
func kompiler(r RegelJSON, versjon string, avhengigheter []*DynamiskRegel) (*DynamiskRegel, error) {
	if r.Uttrykk == "" {
		return nil, errors.New("uttrykk is required")
	}

	opts := make([]cel.EnvOption, len(r.Benytter))
	for i, navn := range r.Benytter {
		opts[i] = cel.Variable(navn, cel.DynType)
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(r.Uttrykk)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	meta := regler.RegelMeta{
		ID:          r.ID,
		Beskrivelse: r.Beskrivelse,
		Versjon:     versjon,
		GyldigFra:   r.GyldigFra,
	}
	underregler := make([]regler.RegelNode, len(avhengigheter))
	for i, dep := range avhengigheter {
		underregler[i] = dep
	}
	navn := r.Benytter

	return regler.Definer(meta, func(g *DynamiskGrunnlag, periode regler.RegelPeriode) (regler.Faktum[any], error) {
		aktivering := make(map[string]any, len(avhengigheter))
		underliggende := make([]regler.Spor, len(avhengigheter))
		for i, dep := range avhengigheter {
			f, err := dep.Anvend(g, periode)
			if err != nil {
				return regler.Faktum[any]{}, err
			}
			aktivering[navn[i]] = f.Verdi
			underliggende[i] = f.Spor()
		}

		out, _, err := prg.Eval(aktivering)
		if err != nil {
			return regler.Faktum[any]{}, fmt.Errorf("evaluation error: %w", err)
		}
		return regler.Faktum[any]{Verdi: out.Value(), Underliggende: underliggende}, nil
	}, underregler...), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var reservedKeywords = map[string]bool{
	"true": true, "false": true, "null": true, "in": true,
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "let": true,
	"loop": true, "package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
}

func validateIdentifier(name string) error {
	if name == "" {
		return errors.New("identifier cannot be empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("identifier length %d exceeds maximum of 100 characters", len(name))
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("identifier %q must match %s", name, identifierPattern)
	}
	if reservedKeywords[name] {
		return fmt.Errorf("cannot use reserved keyword %q as identifier", name)
	}
	return nil
}
