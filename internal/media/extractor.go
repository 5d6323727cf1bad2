package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/hapticstudio/worker/internal/config"
)

// ErrDecode indicates the external transcoder failed to produce audio.
var ErrDecode = errors.New("audio decode failed")

// AudioExtractor produces a mono PCM waveform from a video file on disk.
type AudioExtractor interface {
	ExtractPCM(ctx context.Context, videoPath string) ([]float64, int, error)
}

// FFmpegExtractor shells out to ffmpeg to demux and decode the audio track.
// Output is mono signed 16-bit little-endian PCM at the configured sample
// rate, capped at MaxDuration seconds; longer inputs are truncated, not
// rejected.
type FFmpegExtractor struct {
	ffmpegPath  string
	sampleRate  int
	maxDuration int
	timeout     time.Duration
}

func NewFFmpegExtractor(cfg *config.MediaConfig) *FFmpegExtractor {
	return &FFmpegExtractor{
		ffmpegPath:  cfg.FFmpegPath,
		sampleRate:  cfg.SampleRate,
		maxDuration: cfg.MaxDuration,
		timeout:     time.Duration(cfg.Timeout) * time.Second,
	}
}

// ExtractPCM decodes the audio track of videoPath into float64 samples in
// [-1, 1] and returns them with the sample rate.
func (e *FFmpegExtractor) ExtractPCM(ctx context.Context, videoPath string) ([]float64, int, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", strconv.Itoa(e.sampleRate),
		"-t", strconv.Itoa(e.maxDuration),
		"-f", "s16le",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, 0, fmt.Errorf("%w: ffmpeg: %v: %s", ErrDecode, err, stderr.String())
	}

	samples := pcm16ToFloat64(stdout.Bytes())
	return samples, e.sampleRate, nil
}

// pcm16ToFloat64 converts little-endian signed 16-bit PCM bytes to float64
// samples scaled to [-1, 1]. A trailing odd byte is dropped.
func pcm16ToFloat64(data []byte) []float64 {
	numSamples := len(data) / 2
	samples := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		raw := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
		samples[i] = float64(raw) / 32768.0
	}
	return samples
}
