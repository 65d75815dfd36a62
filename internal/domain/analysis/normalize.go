package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/herbadex/internal/domain"
)

// MalformedOutputError carries the raw service text for diagnostics when it
// cannot be parsed as a JSON object.
type MalformedOutputError struct {
	Raw string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("%s: %.120s", domain.ErrMalformedServiceOutput.Error(), e.Raw)
}

func (e *MalformedOutputError) Unwrap() error { return domain.ErrMalformedServiceOutput }

// Normalize projects raw vision-extraction output onto the canonical
// Structured shape and returns its JSON serialization. Unknown keys are
// dropped; present but empty values collapse to null. The output key order is
// fixed by the struct, so equal inputs yield byte-identical output. Pure; no
// side effects.
func Normalize(raw string) (string, error) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", &MalformedOutputError{Raw: raw}
	}

	s := Structured{
		TaxonomicName:      textField(parsed, "taxonomic_name"),
		CommonName:         textField(parsed, "common_name"),
		Family:             textField(parsed, "family"),
		Genus:              textField(parsed, "genus"),
		Species:            textField(parsed, "species"),
		Subspecies:         textField(parsed, "subspecies"),
		Variety:            textField(parsed, "variety"),
		Elevation:          textField(parsed, "elevation"),
		Form:               textField(parsed, "form"),
		PlantImageURL:      textField(parsed, "plant_image_url"),
		GeographicLocation: textField(parsed, "geographic_location"),
		CollectionDate:     textField(parsed, "collection_date"),
		Collector:          textField(parsed, "collector"),
		HerbariumCode:      textField(parsed, "herbarium_code"),
		AccessionNumber:    textField(parsed, "accession_number"),
		Habitat:            textField(parsed, "habitat"),
		Description:        textField(parsed, "description"),
		Notes:              textField(parsed, "notes"),
	}

	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal structured analysis: %w", err)
	}
	return string(data), nil
}

// textField extracts a named value as a non-empty string, or nil.
// Numbers are stringified (collection dates and elevations arrive as either).
func textField(m map[string]any, key string) *string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return &t
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}
