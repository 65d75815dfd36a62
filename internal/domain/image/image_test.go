package image

import (
	"testing"
	"time"

	"github.com/kailas-cloud/herbadex/internal/domain/analysis"
)

func TestNew_PendingState(t *testing.T) {
	rec, err := New("img-1", "leaf.jpg", "image/jpeg", 2048, "https://blobs.example/leaf.jpg", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Analysis() != analysis.PendingMarker {
		t.Errorf("expected pending marker, got %q", rec.Analysis())
	}
	if rec.State() != analysis.Pending {
		t.Errorf("expected Pending state, got %v", rec.State())
	}
	if rec.Revision() != 1 {
		t.Errorf("expected revision 1, got %d", rec.Revision())
	}
}

func TestNew_Validation(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		fn   func() (Record, error)
	}{
		{"empty_id", func() (Record, error) {
			return New("", "leaf.jpg", "image/jpeg", 1, "https://x", now)
		}},
		{"empty_name", func() (Record, error) {
			return New("img-1", "", "image/jpeg", 1, "https://x", now)
		}},
		{"empty_content_type", func() (Record, error) {
			return New("img-1", "leaf.jpg", "", 1, "https://x", now)
		}},
		{"zero_size", func() (Record, error) {
			return New("img-1", "leaf.jpg", "image/jpeg", 0, "https://x", now)
		}},
		{"empty_url", func() (Record, error) {
			return New("img-1", "leaf.jpg", "image/jpeg", 1, "", now)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.fn(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
