package haptic

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/hapticstudio/worker/internal/model"
)

func samplePattern() *model.HapticPattern {
	return &model.HapticPattern{
		Events: []model.HapticEvent{
			{Time: 1.0, Intensity: 1.0, Duration: 0.1, Kind: model.EventKindBeat, Sharpness: 0.8},
			{Time: 2.0, Intensity: 0.6, Duration: 0.05, Kind: model.EventKindOnset, Sharpness: 0.5},
		},
		Metadata: model.PatternMetadata{
			Tempo:       120,
			TotalEvents: 2,
			Duration:    3.5,
		},
	}
}

func TestEncodeJSON_RoundTrip(t *testing.T) {
	pattern := samplePattern()

	data, err := Encode(pattern, model.FormatJSON)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodePattern(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if !reflect.DeepEqual(pattern, decoded) {
		t.Errorf("round trip mismatch:\nbefore: %+v\nafter:  %+v", pattern, decoded)
	}
}

func TestEncodeJSON_FieldNames(t *testing.T) {
	data, err := Encode(samplePattern(), model.FormatJSON)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var doc struct {
		Events   []map[string]interface{} `json:"events"`
		Metadata map[string]interface{}   `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(doc.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(doc.Events))
	}
	for _, field := range []string{"time", "intensity", "duration", "type", "sharpness"} {
		if _, ok := doc.Events[0][field]; !ok {
			t.Errorf("event missing field %q", field)
		}
	}
	for _, field := range []string{"tempo", "total_events", "duration"} {
		if _, ok := doc.Metadata[field]; !ok {
			t.Errorf("metadata missing field %q", field)
		}
	}
}

func TestEncodeAHAP_Envelope(t *testing.T) {
	data, err := Encode(samplePattern(), model.FormatAHAP)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if doc["Version"] != 1.0 {
		t.Errorf("expected Version 1.0, got %v", doc["Version"])
	}

	entries, ok := doc["Pattern"].([]interface{})
	if !ok || len(entries) != 2 {
		t.Fatalf("expected Pattern with 2 entries, got %v", doc["Pattern"])
	}

	entry := entries[0].(map[string]interface{})
	event, ok := entry["Event"].(map[string]interface{})
	if !ok {
		t.Fatalf("entry missing Event: %v", entry)
	}

	if event["Time"] != 1.0 {
		t.Errorf("expected Time 1.0, got %v", event["Time"])
	}
	if event["EventType"] != "HapticTransient" {
		t.Errorf("expected EventType HapticTransient, got %v", event["EventType"])
	}

	params, ok := event["EventParameters"].([]interface{})
	if !ok || len(params) != 2 {
		t.Fatalf("expected 2 EventParameters, got %v", event["EventParameters"])
	}
	first := params[0].(map[string]interface{})
	if first["ParameterID"] != "HapticIntensity" || first["ParameterValue"] != 1.0 {
		t.Errorf("unexpected intensity parameter: %v", first)
	}
	second := params[1].(map[string]interface{})
	if second["ParameterID"] != "HapticSharpness" || second["ParameterValue"] != 0.8 {
		t.Errorf("unexpected sharpness parameter: %v", second)
	}

	// The AHAP schema has no representation for duration or kind.
	for _, forbidden := range []string{"Duration", "duration", "Kind", "type"} {
		if _, ok := event[forbidden]; ok {
			t.Errorf("AHAP event must not carry %q", forbidden)
		}
	}
}

func TestEncodeAHAP_EmptyPattern(t *testing.T) {
	pattern := &model.HapticPattern{
		Events:   []model.HapticEvent{},
		Metadata: model.PatternMetadata{Duration: 1.0},
	}

	data, err := Encode(pattern, model.FormatAHAP)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var doc ahapDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(doc.Pattern) != 0 {
		t.Errorf("expected empty Pattern, got %d entries", len(doc.Pattern))
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	_, err := Encode(samplePattern(), model.OutputFormat("xml"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
