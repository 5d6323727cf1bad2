package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hapticstudio/worker/internal/client"
	"github.com/hapticstudio/worker/internal/dsp"
	"github.com/hapticstudio/worker/internal/haptic"
	"github.com/hapticstudio/worker/internal/media"
	"github.com/hapticstudio/worker/internal/model"
)

// HapticService runs the full generation pipeline for one job: fetch the
// source video, decode its audio, extract features, synthesize the haptic
// pattern, encode every requested format and persist the artifacts.
type HapticService struct {
	storage      client.StorageClient
	audio        media.AudioExtractor
	features     *dsp.Extractor
	synthesizer  *haptic.Synthesizer
	inputBucket  string
	outputBucket string
}

func NewHapticService(
	storage client.StorageClient,
	audio media.AudioExtractor,
	features *dsp.Extractor,
	synthesizer *haptic.Synthesizer,
	inputBucket, outputBucket string,
) *HapticService {
	return &HapticService{
		storage:      storage,
		audio:        audio,
		features:     features,
		synthesizer:  synthesizer,
		inputBucket:  inputBucket,
		outputBucket: outputBucket,
	}
}

// Generate processes one job end to end and returns the output location
// prefix. Artifacts are written under {jobID}/haptic.{format}, so rerunning
// the same job overwrites its artifacts instead of duplicating them. Every
// temporary file is scoped to this call and removed on all exit paths.
//
// Stage order is strictly sequential; a failure at any stage aborts the job.
// A partial upload (some formats written, one failed) is still a failure —
// already-written artifacts are not rolled back, the overwrite on retry
// covers them.
func (s *HapticService) Generate(ctx context.Context, jobID, videoFilename string, formats []model.OutputFormat) (string, error) {
	if len(formats) == 0 {
		formats = model.DefaultFormats
	}

	tempDir, err := os.MkdirTemp("", "haptic-"+jobID+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// Fetch
	videoPath := filepath.Join(tempDir, "source"+filepath.Ext(videoFilename))
	if err := s.storage.Download(ctx, s.inputBucket, videoFilename, videoPath); err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	log.Printf("Job %s: downloaded %s/%s", jobID, s.inputBucket, videoFilename)

	// Analyze
	samples, sampleRate, err := s.audio.ExtractPCM(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("decode failed: %w", err)
	}

	bundle, err := s.features.Extract(samples, sampleRate)
	if err != nil {
		return "", fmt.Errorf("analysis failed: %w", err)
	}

	pattern := s.synthesizer.Synthesize(bundle)
	log.Printf("Job %s: synthesized %d events over %.2fs at %.0f BPM",
		jobID, pattern.Metadata.TotalEvents, pattern.Metadata.Duration, pattern.Metadata.Tempo)

	// Encode all formats before touching storage so an unsupported format
	// never leaves partial artifacts behind.
	artifacts := make(map[model.OutputFormat][]byte, len(formats))
	for _, format := range formats {
		encoded, err := haptic.Encode(pattern, format)
		if err != nil {
			return "", fmt.Errorf("encode failed: %w", err)
		}
		artifacts[format] = encoded
	}

	// Upload
	for _, format := range formats {
		key := fmt.Sprintf("%s/haptic.%s", jobID, format)
		err := s.storage.Upload(ctx, s.outputBucket, key, bytes.NewReader(artifacts[format]), haptic.ContentType(format))
		if err != nil {
			return "", fmt.Errorf("upload failed: %w", err)
		}
		log.Printf("Job %s: uploaded %s/%s", jobID, s.outputBucket, key)
	}

	return s.storage.PublicURL(s.outputBucket, jobID) + "/", nil
}
