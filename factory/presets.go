package factory

import "fmt"

// BarnepensjonRegelsettJSON returns the sibling-adjusted children's pension
// as an expression rule set. It reads the grunnlag fields grunnbeloep,
// antall_soesken and trygdetid, all numbers.
func BarnepensjonRegelsettJSON(id, versjon string) string {
	return fmt.Sprintf(`{
  "id": %q,
  "versjon": %q,
  "beskrivelse": "Barnepensjon med søskenjustering",
  "regler": [
    {
      "id": "soeskenjustert_sats",
      "beskrivelse": "Andel av G per barn etter søskenjustering",
      "gyldig_fra": "2021-01-01",
      "uttrykk": "(0.40 + 0.25 * antall_soesken) / (antall_soesken + 1.0)",
      "benytter": ["antall_soesken"]
    },
    {
      "id": "beloep_full_trygdetid",
      "beskrivelse": "Årlig beløp ved full trygdetid",
      "gyldig_fra": "2021-01-01",
      "uttrykk": "grunnbeloep * soeskenjustert_sats",
      "benytter": ["grunnbeloep", "soeskenjustert_sats"]
    },
    {
      "id": "barnepensjon",
      "beskrivelse": "Årlig barnepensjon justert for trygdetid",
      "gyldig_fra": "2021-01-01",
      "uttrykk": "beloep_full_trygdetid * (trygdetid < 40.0 ? trygdetid : 40.0) / 40.0",
      "benytter": ["beloep_full_trygdetid", "trygdetid"]
    }
  ],
  "resultat": "barnepensjon"
}`, id, versjon)
}
