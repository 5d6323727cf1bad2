package haptic

import (
	"encoding/json"
	"fmt"

	"github.com/hapticstudio/worker/internal/model"
)

// ErrUnsupportedFormat indicates a format the encoder does not know. It is a
// caller or configuration bug, not a transient condition.
var ErrUnsupportedFormat = fmt.Errorf("unsupported output format")

// AHAP schema constants. The envelope is fixed by the consuming platform.
const (
	ahapVersion        = 1.0
	ahapEventType      = "HapticTransient"
	ahapParamIntensity = "HapticIntensity"
	ahapParamSharpness = "HapticSharpness"
)

type ahapParameter struct {
	ParameterID    string  `json:"ParameterID"`
	ParameterValue float64 `json:"ParameterValue"`
}

type ahapEvent struct {
	Time            float64         `json:"Time"`
	EventType       string          `json:"EventType"`
	EventParameters []ahapParameter `json:"EventParameters"`
}

type ahapEntry struct {
	Event ahapEvent `json:"Event"`
}

type ahapDocument struct {
	Version float64     `json:"Version"`
	Pattern []ahapEntry `json:"Pattern"`
}

// Encode serializes a pattern into the requested format.
func Encode(pattern *model.HapticPattern, format model.OutputFormat) ([]byte, error) {
	switch format {
	case model.FormatJSON:
		return json.MarshalIndent(pattern, "", "  ")
	case model.FormatAHAP:
		return encodeAHAP(pattern)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// DecodePattern parses the generic JSON format back into a pattern.
func DecodePattern(data []byte) (*model.HapticPattern, error) {
	var pattern model.HapticPattern
	if err := json.Unmarshal(data, &pattern); err != nil {
		return nil, fmt.Errorf("failed to parse haptic pattern: %w", err)
	}
	return &pattern, nil
}

// encodeAHAP maps each event to one HapticTransient entry carrying intensity
// and sharpness. The AHAP schema has no field for event duration or kind, so
// those are dropped. The loss is imposed by the format; do not extend the
// envelope with extra fields.
func encodeAHAP(pattern *model.HapticPattern) ([]byte, error) {
	doc := ahapDocument{
		Version: ahapVersion,
		Pattern: make([]ahapEntry, 0, len(pattern.Events)),
	}

	for _, event := range pattern.Events {
		doc.Pattern = append(doc.Pattern, ahapEntry{
			Event: ahapEvent{
				Time:      event.Time,
				EventType: ahapEventType,
				EventParameters: []ahapParameter{
					{ParameterID: ahapParamIntensity, ParameterValue: event.Intensity},
					{ParameterID: ahapParamSharpness, ParameterValue: event.Sharpness},
				},
			},
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}

// ContentType returns the MIME type uploaded with an encoded artifact.
func ContentType(format model.OutputFormat) string {
	switch format {
	case model.FormatAHAP:
		return "application/x-apple-haptics"
	default:
		return "application/json"
	}
}
