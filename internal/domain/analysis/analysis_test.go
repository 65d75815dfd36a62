package analysis

import (
	"encoding/json"
	"testing"
)

func TestStateOf(t *testing.T) {
	structured, err := Normalize(`{"family":"Rosaceae"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		value string
		want  State
	}{
		{"pending_marker", PendingMarker, Pending},
		{"structured", structured, Succeeded},
		{"error_envelope", Envelope("vision call failed", "timeout"), Failed},
		{"free_text", "not json at all", Pending},
		{"object_with_error_key_only", `{"error":"x","extra":1}`, Succeeded},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StateOf(tc.value); got != tc.want {
				t.Errorf("StateOf(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestEnvelope_Shape(t *testing.T) {
	raw := Envelope("malformed vision output", "unexpected token")

	var env ErrorEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("envelope is not valid JSON: %v", err)
	}
	if env.Error != "malformed vision output" {
		t.Errorf("unexpected error kind: %q", env.Error)
	}
	if env.Details != "unexpected token" {
		t.Errorf("unexpected details: %q", env.Details)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal to map: %v", err)
	}
	if len(m) != 2 {
		t.Errorf("expected exactly 2 keys, got %d", len(m))
	}
}
