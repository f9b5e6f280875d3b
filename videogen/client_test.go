package videogen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"reelsmith/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "test-key")
	c.pollInterval = 5 * time.Millisecond
	c.maxPollWait = time.Second
	return c
}

func TestCreateTask(t *testing.T) {
	var gotAuth string
	var gotBody CreateRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/video/create" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": "task-42"}})
	}))

	id, err := c.CreateTask(context.Background(), CreateRequest{Prompt: "a dog on a skateboard"})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if id != "task-42" {
		t.Fatalf("task id = %q; want task-42", id)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotBody.Model != config.DefaultGenerationModel {
		t.Fatalf("model = %q; want default", gotBody.Model)
	}
}

func TestCreateTaskWithImagesUsesFramesModel(t *testing.T) {
	var gotBody CreateRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"id": "task-1"})
	}))

	_, err := c.CreateTask(context.Background(), CreateRequest{
		Prompt: "animate this",
		Model:  "veo3-fast",
		Images: []string{"https://example.com/a.png"},
	})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if gotBody.Model != config.FramesGenerationModel {
		t.Fatalf("model = %q; want frames model", gotBody.Model)
	}
}

func TestCreateTaskNoTaskID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"message": "accepted"})
	}))
	if _, err := c.CreateTask(context.Background(), CreateRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error when response has no task id")
	}
}

func TestCreateTaskMissingKey(t *testing.T) {
	c := NewClient("http://unused", "")
	if _, err := c.CreateTask(context.Background(), CreateRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error with empty API key")
	}
}

func TestPollUntilSuccess(t *testing.T) {
	var polls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/video/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("id") != "task-9" {
			t.Errorf("id = %q", r.URL.Query().Get("id"))
		}
		if polls.Add(1) < 3 {
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"status": "processing", "progress": "50"}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"status": "succeeded", "url": "https://cdn.example.com/v.mp4"},
		})
	}))

	var seen []string
	status, err := c.Poll(context.Background(), "task-9", func(ts TaskStatus) {
		seen = append(seen, ts.Status)
	})
	if err != nil {
		t.Fatalf("Poll error: %v", err)
	}
	if status.VideoURL != "https://cdn.example.com/v.mp4" {
		t.Fatalf("video url = %q", status.VideoURL)
	}
	if len(seen) < 3 {
		t.Fatalf("progress callback fired %d times; want >= 3", len(seen))
	}
}

func TestPollFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"status": "failed", "error": "content policy"},
		})
	}))
	_, err := c.Poll(context.Background(), "task-x", nil)
	if err == nil {
		t.Fatal("expected error for failed task")
	}
}

func TestPollTimeout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"status": "processing"}})
	}))
	c.maxPollWait = 20 * time.Millisecond

	_, err := c.Poll(context.Background(), "task-slow", nil)
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("Poll error = %v; want ErrPollTimeout", err)
	}
}

func TestPollSuccessWithoutURL(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "completed"})
	}))
	_, err := c.Poll(context.Background(), "task-nourl", nil)
	if err == nil {
		t.Fatal("expected error when completed task has no URL")
	}
}

func TestPollContextCancel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"status": "processing"}})
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()
	_, err := c.Poll(ctx, "task-c", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Poll error = %v; want context.Canceled", err)
	}
}

func TestDownload(t *testing.T) {
	payload := []byte("fake video bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "nested", "out.mp4")
	c := NewClient("http://unused", "key")
	n, err := c.Download(context.Background(), srv.URL, out)
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if n != int64(len(payload)) {
		t.Fatalf("downloaded %d bytes; want %d", n, len(payload))
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatal("downloaded content mismatch")
	}
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("http://unused", "key")
	if _, err := c.Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x.mp4")); err == nil {
		t.Fatal("expected error for 404 download")
	}
}
