package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"reelsmith/config"
)

// ErrPollTimeout is returned when a task does not finish within the poll window.
var ErrPollTimeout = errors.New("videogen: polling timed out")

// Client talks to the video generation API: create a task, poll it, download the result.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	pollInterval time.Duration
	maxPollWait  time.Duration
}

// NewClient creates a generation client. baseURL falls back to the default provider.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = config.DefaultGenerationBaseURL
	}
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: config.RequestTimeout},
		pollInterval: config.PollInterval,
		maxPollWait:  config.MaxPollWait,
	}
}

// CreateRequest describes a video generation task.
type CreateRequest struct {
	Prompt        string   `json:"prompt"`
	Model         string   `json:"model"`
	EnhancePrompt bool     `json:"enhance_prompt"`
	Images        []string `json:"images,omitempty"`
}

// TaskStatus is the normalized state of a remote generation task.
type TaskStatus struct {
	Status   string
	VideoURL string
	Progress string
	Error    string
}

// Done reports whether the task reached a terminal state.
func (ts TaskStatus) Done() bool { return isSuccessStatus(ts.Status) || isFailureStatus(ts.Status) }

// Succeeded reports whether the task completed successfully.
func (ts TaskStatus) Succeeded() bool { return isSuccessStatus(ts.Status) }

// CreateTask submits a generation request and returns the remote task id.
// When images are supplied the frames model is used regardless of req.Model.
func (c *Client) CreateTask(ctx context.Context, req CreateRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("videogen: API key not configured")
	}
	if req.Model == "" {
		req.Model = config.DefaultGenerationModel
	}
	if len(req.Images) > 0 {
		req.Model = config.FramesGenerationModel
	}

	var raw map[string]any
	if err := c.doJSONRequest(ctx, http.MethodPost, "/v1/video/create", req, &raw); err != nil {
		return "", err
	}

	taskID := extractTaskID(raw)
	if taskID == "" {
		return "", fmt.Errorf("videogen: no task id in create response: %v", raw)
	}
	return taskID, nil
}

// QueryTask fetches the current status of a task.
func (c *Client) QueryTask(ctx context.Context, taskID string) (TaskStatus, error) {
	if c.apiKey == "" {
		return TaskStatus{}, errors.New("videogen: API key not configured")
	}

	var raw map[string]any
	path := "/v1/video/query?id=" + url.QueryEscape(taskID)
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return TaskStatus{}, err
	}
	return extractStatus(raw), nil
}

// Poll queries the task until it finishes or the poll window elapses.
// Transient query errors are logged and retried; progress callbacks are
// invoked on each poll when provided.
func (c *Client) Poll(ctx context.Context, taskID string, onProgress func(TaskStatus)) (TaskStatus, error) {
	deadline := time.Now().Add(c.maxPollWait)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		if time.Now().After(deadline) {
			return TaskStatus{}, fmt.Errorf("%w after %s (task %s)", ErrPollTimeout, c.maxPollWait, taskID)
		}

		status, err := c.QueryTask(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return TaskStatus{}, ctx.Err()
			}
			log.Printf("videogen: poll error for task %s (will retry): %v", taskID, err)
		} else {
			if onProgress != nil {
				onProgress(status)
			}
			if status.Succeeded() {
				if status.VideoURL == "" {
					return status, fmt.Errorf("videogen: task %s completed but no video URL found", taskID)
				}
				return status, nil
			}
			if isFailureStatus(status.Status) {
				msg := status.Error
				if msg == "" {
					msg = "unknown error"
				}
				return status, fmt.Errorf("videogen: task %s failed: %s", taskID, msg)
			}
		}

		select {
		case <-ctx.Done():
			return TaskStatus{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Download fetches the generated video into outputPath, creating parent
// directories as needed. Returns the downloaded file size.
func (c *Client) Download(ctx context.Context, videoURL, outputPath string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	// Downloads exceed the API timeout; use a dedicated client.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download returned %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to write video file: %w", err)
	}
	return n, nil
}

func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload, result interface{}) error {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
