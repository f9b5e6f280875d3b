package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"reelsmith/types"
)

// APIClient is a thin HTTP client for the reelsmith generation API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a new API client.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// StartWorkflow triggers the complete generation workflow and returns the job id.
func (c *APIClient) StartWorkflow(prompt, email string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"user_input": prompt,
		"user_email": email,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.client.Post(c.baseURL+"/api/generation/complete-workflow", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to start workflow: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.JobID, nil
}

// GetStatus fetches the current job status.
func (c *APIClient) GetStatus(jobID string) (*types.JobStatus, error) {
	resp, err := c.client.Get(c.baseURL + "/api/generation/jobs/" + jobID + "/status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var status types.JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &status, nil
}
