package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"videonotes/internal/contextutil"
	"videonotes/internal/retry"
)

// ModelLoader preloads models into a llama.cpp router server via /models/load,
// so the first chunk summary does not pay the load time.
type ModelLoader struct {
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	loadTimeout  time.Duration
}

// NewModelLoader creates a new model loader.
func NewModelLoader(baseURL string) *ModelLoader {
	return &ModelLoader{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		client:       newHTTPClient(),
		pollInterval: time.Second,
		loadTimeout:  2 * time.Minute,
	}
}

// LoadModelRequest represents the request payload for loading a model.
type LoadModelRequest struct {
	Model     string   `json:"model"`
	ExtraArgs []string `json:"extra_args,omitempty"`
}

// LoadModelResponse represents the response from the load model endpoint.
type LoadModelResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ModelStatus represents the status of a model from the /models endpoint.
type ModelStatus struct {
	ID      string `json:"id"`
	InCache bool   `json:"in_cache"`
	Status  struct {
		Value    string `json:"value"`
		ExitCode *int   `json:"exit_code,omitempty"`
		Failed   *bool  `json:"failed,omitempty"`
	} `json:"status"`
}

// ModelsResponse represents the response from the /models endpoint.
type ModelsResponse struct {
	Data []ModelStatus `json:"data"`
}

// modelStatus returns the status entry for modelName, or nil when the server
// does not list it.
func (ml *ModelLoader) modelStatus(ctx context.Context, modelName string) (*ModelStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ml.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	resp, err := ml.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to check model status: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, retry.NewStatusError(resp)
	}

	var modelsResp ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, fmt.Errorf("failed to decode models response: %w", err)
	}

	for i := range modelsResp.Data {
		if modelsResp.Data[i].ID == modelName {
			return &modelsResp.Data[i], nil
		}
	}
	return nil, nil
}

// IsModelLoaded checks if a model is already loaded (in cache).
func (ml *ModelLoader) IsModelLoaded(ctx context.Context, modelName string) (bool, error) {
	status, err := ml.modelStatus(ctx, modelName)
	if err != nil {
		return false, err
	}
	return status != nil && status.InCache, nil
}

// LoadModel loads a model unless it is already in cache, then polls /models
// until the model is in cache, reports a failure, or the load timeout passes.
func (ml *ModelLoader) LoadModel(ctx context.Context, modelName string, extraArgs []string) error {
	logger := contextutil.LoggerFromContext(ctx)

	loaded, err := ml.IsModelLoaded(ctx, modelName)
	if err != nil {
		logger.DebugContext(ctx, "model status check failed, loading anyway", "model", modelName, "error", err)
	} else if loaded {
		return nil
	}

	body, err := json.Marshal(LoadModelRequest{Model: modelName, ExtraArgs: extraArgs})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ml.baseURL+"/models/load", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ml.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return retry.NewStatusError(resp)
	}

	var loadResp LoadModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&loadResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !loadResp.Success {
		return fmt.Errorf("model load failed: %s", loadResp.Error)
	}

	// /models/load returns before the model is ready; loading may still fail.
	deadline := time.Now().Add(ml.loadTimeout)
	for time.Now().Before(deadline) {
		status, err := ml.modelStatus(ctx, modelName)
		switch {
		case err != nil:
			logger.DebugContext(ctx, "model status poll failed", "model", modelName, "error", err)
		case status == nil:
		case status.InCache:
			logger.InfoContext(ctx, "model loaded", "model", modelName)
			return nil
		case status.Status.Failed != nil && *status.Status.Failed:
			exitCode := 0
			if status.Status.ExitCode != nil {
				exitCode = *status.Status.ExitCode
			}
			return fmt.Errorf("model load failed with exit code %d", exitCode)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ml.pollInterval):
		}
	}

	return fmt.Errorf("model %q did not load within %s", modelName, ml.loadTimeout)
}
