package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/hapticstudio/worker/internal/client"
	"github.com/hapticstudio/worker/internal/dsp"
	"github.com/hapticstudio/worker/internal/haptic"
	"github.com/hapticstudio/worker/internal/model"
)

type upload struct {
	bucket      string
	key         string
	contentType string
	data        []byte
}

type fakeStorage struct {
	downloadErr error
	uploadErrOn string // key that fails to upload
	uploads     []upload
	objects     map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Download(ctx context.Context, bucket, key, destPath string) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(destPath, []byte("fake video bytes"), 0o644)
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	if f.uploadErrOn != "" && strings.HasSuffix(key, f.uploadErrOn) {
		return errors.New("upload rejected")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.uploads = append(f.uploads, upload{bucket, key, contentType, data})
	f.objects[bucket+"/"+key] = data
	return nil
}

func (f *fakeStorage) PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://cdn.test/%s", key)
}

type fakeAudio struct {
	samples    []float64
	sampleRate int
	err        error
}

func (f *fakeAudio) ExtractPCM(ctx context.Context, videoPath string) ([]float64, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.samples, f.sampleRate, nil
}

// pulseAudio returns a click train long enough to yield onsets and beats.
func pulseAudio() *fakeAudio {
	samples := make([]float64, 32768)
	for p := 4096; p < len(samples); p += 4096 {
		samples[p] = 1.0
	}
	return &fakeAudio{samples: samples, sampleRate: 8000}
}

func newService(storage client.StorageClient, audio *fakeAudio) *HapticService {
	return NewHapticService(
		storage,
		audio,
		dsp.NewExtractor(),
		haptic.NewSynthesizer(haptic.DefaultConfig()),
		"input-bucket",
		"output-bucket",
	)
}

func TestGenerate_Success(t *testing.T) {
	storage := newFakeStorage()
	svc := newService(storage, pulseAudio())

	outputPath, err := svc.Generate(context.Background(), "job-1", "clip.mp4", nil)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if outputPath != "https://cdn.test/job-1/" {
		t.Errorf("unexpected output path %q", outputPath)
	}

	if len(storage.uploads) != 2 {
		t.Fatalf("expected 2 uploads for default formats, got %d", len(storage.uploads))
	}
	wantKeys := []string{"job-1/haptic.json", "job-1/haptic.ahap"}
	for i, want := range wantKeys {
		if storage.uploads[i].bucket != "output-bucket" || storage.uploads[i].key != want {
			t.Errorf("upload %d: expected output-bucket/%s, got %s/%s",
				i, want, storage.uploads[i].bucket, storage.uploads[i].key)
		}
	}

	// The generic artifact must parse back into a valid pattern.
	pattern, err := haptic.DecodePattern(storage.objects["output-bucket/job-1/haptic.json"])
	if err != nil {
		t.Fatalf("uploaded JSON artifact does not parse: %v", err)
	}
	if pattern.Metadata.TotalEvents != len(pattern.Events) {
		t.Errorf("metadata total_events %d does not match %d events",
			pattern.Metadata.TotalEvents, len(pattern.Events))
	}
	if len(pattern.Events) == 0 {
		t.Error("expected events for a pulsed source")
	}
	for i := 1; i < len(pattern.Events); i++ {
		if pattern.Events[i].Time <= pattern.Events[i-1].Time {
			t.Errorf("artifact events not strictly ordered at %d", i)
		}
	}
}

func TestGenerate_IdempotentReprocessing(t *testing.T) {
	storage := newFakeStorage()
	svc := newService(storage, pulseAudio())

	first, err := svc.Generate(context.Background(), "job-1", "clip.mp4", nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := svc.Generate(context.Background(), "job-1", "clip.mp4", nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first != second {
		t.Errorf("reprocessing changed the output path: %q vs %q", first, second)
	}
	// Four uploads total, but only two distinct keys: the rerun overwrites.
	if len(storage.uploads) != 4 {
		t.Errorf("expected 4 uploads across two runs, got %d", len(storage.uploads))
	}
	if len(storage.objects) != 2 {
		t.Errorf("expected 2 distinct artifact keys after rerun, got %d", len(storage.objects))
	}
}

func TestGenerate_SourceNotFound(t *testing.T) {
	storage := newFakeStorage()
	storage.downloadErr = fmt.Errorf("%w: input-bucket/clip.mp4", client.ErrSourceNotFound)
	svc := newService(storage, pulseAudio())

	_, err := svc.Generate(context.Background(), "job-1", "clip.mp4", nil)
	if !errors.Is(err, client.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
	if len(storage.uploads) != 0 {
		t.Errorf("expected no uploads after fetch failure")
	}
}

func TestGenerate_EmptyWaveform(t *testing.T) {
	storage := newFakeStorage()
	svc := newService(storage, &fakeAudio{samples: nil, sampleRate: 8000})

	_, err := svc.Generate(context.Background(), "job-1", "clip.mp4", nil)
	if !errors.Is(err, dsp.ErrEmptyWaveform) {
		t.Errorf("expected ErrEmptyWaveform, got %v", err)
	}
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	storage := newFakeStorage()
	svc := newService(storage, pulseAudio())

	_, err := svc.Generate(context.Background(), "job-1", "clip.mp4",
		[]model.OutputFormat{model.FormatJSON, model.OutputFormat("midi")})
	if !errors.Is(err, haptic.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	// Formats are encoded before anything is uploaded, so a bad format must
	// not leave partial artifacts.
	if len(storage.uploads) != 0 {
		t.Errorf("expected no uploads for unsupported format, got %d", len(storage.uploads))
	}
}

func TestGenerate_PartialUploadFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.uploadErrOn = "haptic.ahap"
	svc := newService(storage, pulseAudio())

	_, err := svc.Generate(context.Background(), "job-1", "clip.mp4", nil)
	if err == nil {
		t.Fatal("expected error when one format fails to upload")
	}

	// The JSON artifact was already written; the job still fails as a whole
	// and the leftover artifact is covered by overwrite on retry.
	if len(storage.uploads) != 1 || storage.uploads[0].key != "job-1/haptic.json" {
		t.Errorf("expected exactly the json artifact uploaded, got %+v", storage.uploads)
	}
}

func TestGenerate_CleansUpTempFiles(t *testing.T) {
	storage := newFakeStorage()
	svc := newService(storage, pulseAudio())

	before := countTempEntries(t)
	if _, err := svc.Generate(context.Background(), "job-tmp", "clip.mp4", nil); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	after := countTempEntries(t)

	if after > before {
		t.Errorf("temp entries leaked: %d before, %d after", before, after)
	}
}

func countTempEntries(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		t.Fatalf("failed to read temp dir: %v", err)
	}
	count := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "haptic-") {
			count++
		}
	}
	return count
}
