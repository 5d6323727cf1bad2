package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/hapticstudio/worker/internal/client"
	"github.com/hapticstudio/worker/internal/model"
)

// PatternGenerator runs the generation pipeline for one job and returns the
// output location prefix.
type PatternGenerator interface {
	Generate(ctx context.Context, jobID, videoFilename string, formats []model.OutputFormat) (string, error)
}

// HapticWorker consumes haptic generation tasks from the queue. Delivery is
// at least once and may be out of order; the worker holds no per-job state,
// so safety under duplicate delivery comes from the pipeline's path-based
// overwrite plus idempotent status transitions on the jobs API side.
type HapticWorker struct {
	generator PatternGenerator
	status    client.StatusReporter
}

// NewHapticWorker creates a new haptic worker
func NewHapticWorker(generator PatternGenerator, status client.StatusReporter) *HapticWorker {
	return &HapticWorker{
		generator: generator,
		status:    status,
	}
}

// ProcessTask handles one queue message. Outcomes:
//
//   - malformed payload (missing jobId or videoFilename): rejected via
//     SkipRetry so the queue archives it; no status is reported because
//     there is no job to report against
//   - pipeline failure: reported FAILED and the message is acknowledged —
//     a genuinely failing job must not loop through redelivery repeating
//     expensive analysis
//   - success: reported COMPLETED with the output location
//
// A failing status report is logged, never escalated: it would otherwise
// turn an unreachable jobs API into an infinite redelivery loop.
func (w *HapticWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var msg model.JobMessage
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("malformed job message: %v: %w", err, asynq.SkipRetry)
	}
	if msg.JobID == "" || msg.VideoFilename == "" {
		return fmt.Errorf("job message missing jobId or videoFilename: %w", asynq.SkipRetry)
	}

	log.Printf("Starting haptic job: %s (file %s)", msg.JobID, msg.VideoFilename)
	w.report(ctx, msg.JobID, model.JobStatusProcessing, "")

	outputURL, err := w.generator.Generate(ctx, msg.JobID, msg.VideoFilename, msg.Formats)
	if err != nil {
		log.Printf("Haptic job %s failed: %v", msg.JobID, err)
		w.report(ctx, msg.JobID, model.JobStatusFailed, "")
		return nil
	}

	w.report(ctx, msg.JobID, model.JobStatusCompleted, outputURL)
	log.Printf("Haptic job %s completed: %s", msg.JobID, outputURL)
	return nil
}

func (w *HapticWorker) report(ctx context.Context, jobID string, status model.JobStatus, outputURL string) {
	if err := w.status.Report(ctx, jobID, status, outputURL); err != nil {
		log.Printf("Failed to report job %s status %s: %v", jobID, status, err)
	}
}
