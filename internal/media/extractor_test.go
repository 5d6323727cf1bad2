package media

import (
	"math"
	"testing"

	"github.com/hapticstudio/worker/internal/config"
)

func TestPCM16ToFloat64(t *testing.T) {
	// Little-endian samples: 0, 16384, -16384, 32767, -32768
	data := []byte{
		0x00, 0x00,
		0x00, 0x40,
		0x00, 0xC0,
		0xFF, 0x7F,
		0x00, 0x80,
	}

	samples := pcm16ToFloat64(data)
	want := []float64{0, 0.5, -0.5, 32767.0 / 32768.0, -1.0}

	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i, w := range want {
		if math.Abs(samples[i]-w) > 1e-9 {
			t.Errorf("sample %d: expected %v, got %v", i, w, samples[i])
		}
	}
}

func TestPCM16ToFloat64_OddTrailingByte(t *testing.T) {
	samples := pcm16ToFloat64([]byte{0x00, 0x40, 0x7F})
	if len(samples) != 1 {
		t.Errorf("expected trailing byte dropped, got %d samples", len(samples))
	}
}

func TestPCM16ToFloat64_Empty(t *testing.T) {
	if samples := pcm16ToFloat64(nil); len(samples) != 0 {
		t.Errorf("expected no samples, got %d", len(samples))
	}
}

func TestNewFFmpegExtractor_Config(t *testing.T) {
	e := NewFFmpegExtractor(&config.MediaConfig{
		FFmpegPath:  "/usr/bin/ffmpeg",
		SampleRate:  44100,
		MaxDuration: 180,
		Timeout:     120,
	})

	if e.ffmpegPath != "/usr/bin/ffmpeg" {
		t.Errorf("unexpected ffmpeg path %q", e.ffmpegPath)
	}
	if e.sampleRate != 44100 || e.maxDuration != 180 {
		t.Errorf("unexpected sample rate %d / max duration %d", e.sampleRate, e.maxDuration)
	}
}
