package chi

import (
	"time"

	domimg "github.com/kailas-cloud/herbadex/internal/domain/image"
	domspec "github.com/kailas-cloud/herbadex/internal/domain/specimen"
)

// Error response codes.
const (
	codeBadRequest           = "bad_request"
	codeValidationFailed     = "validation_failed"
	codeImageNotFound        = "image_not_found"
	codeSpecimenNotFound     = "specimen_not_found"
	codeRevisionConflict     = "revision_conflict"
	codeBlobResolutionFailed = "blob_resolution_failed"
	codeVisionProviderError  = "vision_provider_error"
	codeInternalError        = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PrepareUploadRequest is the body of POST /uploads.
type PrepareUploadRequest struct {
	ContentType string `json:"content_type"`
}

// UploadTargetResponse is the body of a successful POST /uploads.
type UploadTargetResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubmitImageRequest is the body of POST /images.
type SubmitImageRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	StorageKey  string `json:"storage_key"`
}

// SetAnalysisRequest is the body of PUT /images/{id}/analysis.
type SetAnalysisRequest struct {
	Analysis string `json:"analysis"`
}

// ImageResponse is the wire shape of an image record. Analysis is returned
// verbatim; State is derived from its shape so clients do not have to sniff.
type ImageResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	Analysis    string    `json:"analysis"`
	State       string    `json:"state"`
	Revision    int       `json:"revision"`
	CreatedAt   time.Time `json:"created_at"`
}

// ImageListResponse is the body of GET /images.
type ImageListResponse struct {
	Items []ImageResponse `json:"items"`
	Total int             `json:"total"`
}

// SpecimenResponse is the wire shape of a reference catalog row.
type SpecimenResponse struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	Collectors    string `json:"collectors,omitempty"`
	Country       string `json:"country,omitempty"`
	Family        string `json:"family,omitempty"`
	Genus         string `json:"genus,omitempty"`
	Species       string `json:"species,omitempty"`
	Locality      string `json:"locality,omitempty"`
	CatalogNumber string `json:"catalog_number,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
}

// SpecimenListResponse is the body of GET /specimens/search.
type SpecimenListResponse struct {
	Items []SpecimenResponse `json:"items"`
	Total int                `json:"total"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	QueueDepth int64             `json:"queue_depth"`
}

func imageToResponse(rec *domimg.Record) ImageResponse {
	return ImageResponse{
		ID:          rec.ID(),
		Name:        rec.Name(),
		ContentType: rec.ContentType(),
		Size:        rec.Size(),
		URL:         rec.URL(),
		Analysis:    rec.Analysis(),
		State:       rec.State().String(),
		Revision:    rec.Revision(),
		CreatedAt:   rec.CreatedAt().UTC(),
	}
}

func specimenToResponse(rec *domspec.Record) SpecimenResponse {
	return SpecimenResponse{
		ID:            rec.ID(),
		FullName:      rec.FullName(),
		Collectors:    rec.Collectors(),
		Country:       rec.Country(),
		Family:        rec.Family(),
		Genus:         rec.Genus(),
		Species:       rec.Species(),
		Locality:      rec.Locality(),
		CatalogNumber: rec.CatalogNumber(),
		ImageURL:      rec.ImageURL(),
	}
}
