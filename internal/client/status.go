package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hapticstudio/worker/internal/config"
	"github.com/hapticstudio/worker/internal/model"
)

// StatusReporter notifies the jobs API of job state transitions. The API
// applies transitions idempotently, so resending the same transition after a
// redelivered message is safe.
type StatusReporter interface {
	Report(ctx context.Context, jobID string, status model.JobStatus, outputURL string) error
}

// StatusClient implements StatusReporter against the jobs REST API
type StatusClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type statusUpdate struct {
	Status    model.JobStatus `json:"status"`
	OutputURL string          `json:"outputUrl,omitempty"`
}

// NewStatusClient creates a new jobs API client
func NewStatusClient(cfg *config.StatusAPIConfig) *StatusClient {
	return &StatusClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// Report sends PATCH /jobs/{jobID} with the new status and, for completed
// jobs, the output location. A non-2xx response is an error; callers decide
// whether that is fatal (the worker only logs it).
func (c *StatusClient) Report(ctx context.Context, jobID string, status model.JobStatus, outputURL string) error {
	body, err := json.Marshal(statusUpdate{Status: status, OutputURL: outputURL})
	if err != nil {
		return fmt.Errorf("failed to marshal status update: %w", err)
	}

	url := fmt.Sprintf("%s/jobs/%s", c.baseURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status API returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
