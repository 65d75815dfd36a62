// Package analysis defines the canonical shapes stored in an image record's
// analysis field and the normalizer that produces them from raw vision output.
package analysis

import "encoding/json"

// PendingMarker is stored in the analysis field between record creation and
// job completion.
const PendingMarker = "Analyzing..."

// State classifies the shape of an analysis field value.
type State int

const (
	// Pending means the background job has not written a terminal state yet.
	Pending State = iota
	// Succeeded means the field holds a structured extraction result.
	Succeeded
	// Failed means the field holds an error envelope.
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Structured is the canonical 18-field extraction result. All fields are
// nullable; absent or empty inputs are serialized as explicit JSON null so
// consumers can rely on a fixed key set.
type Structured struct {
	TaxonomicName      *string `json:"taxonomic_name"`
	CommonName         *string `json:"common_name"`
	Family             *string `json:"family"`
	Genus              *string `json:"genus"`
	Species            *string `json:"species"`
	Subspecies         *string `json:"subspecies"`
	Variety            *string `json:"variety"`
	Elevation          *string `json:"elevation"`
	Form               *string `json:"form"`
	PlantImageURL      *string `json:"plant_image_url"`
	GeographicLocation *string `json:"geographic_location"`
	CollectionDate     *string `json:"collection_date"`
	Collector          *string `json:"collector"`
	HerbariumCode      *string `json:"herbarium_code"`
	AccessionNumber    *string `json:"accession_number"`
	Habitat            *string `json:"habitat"`
	Description        *string `json:"description"`
	Notes              *string `json:"notes"`
}

// ErrorEnvelope is the canonical failure shape. Its fixed two-key set
// distinguishes it from Structured.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Envelope serializes an error envelope to its canonical JSON string.
func Envelope(kind, details string) string {
	data, err := json.Marshal(ErrorEnvelope{Error: kind, Details: details})
	if err != nil {
		// Both fields are plain strings; Marshal cannot fail.
		return `{"error":"internal","details":""}`
	}
	return string(data)
}

// StateOf classifies an analysis field value by shape. The pending marker and
// any non-JSON string map to Pending, the two-key error shape to Failed, and
// any other JSON object to Succeeded.
func StateOf(value string) State {
	if value == PendingMarker {
		return Pending
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(value), &m); err != nil {
		return Pending
	}

	if _, hasErr := m["error"]; hasErr {
		if _, hasDetails := m["details"]; hasDetails && len(m) == 2 {
			return Failed
		}
	}
	return Succeeded
}
