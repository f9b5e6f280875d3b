package videogen

import "testing"

func TestExtractTaskID(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"data.id", map[string]any{"data": map[string]any{"id": "task-1"}}, "task-1"},
		{"top-level id", map[string]any{"id": "task-2"}, "task-2"},
		{"result.id", map[string]any{"result": map[string]any{"id": "task-3"}}, "task-3"},
		{"task_id", map[string]any{"task_id": "task-4"}, "task-4"},
		{"data.task_id", map[string]any{"data": map[string]any{"task_id": "task-5"}}, "task-5"},
		{"detail.id", map[string]any{"detail": map[string]any{"id": "task-6"}}, "task-6"},
		{"numeric id", map[string]any{"id": float64(42)}, "42"},
		{"data.id wins over top-level", map[string]any{"id": "b", "data": map[string]any{"id": "a"}}, "a"},
		{"empty", map[string]any{}, ""},
		{"nil values skipped", map[string]any{"id": nil, "task_id": "task-7"}, "task-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTaskID(tt.raw); got != tt.want {
				t.Errorf("extractTaskID(%v) = %q; want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractStatus(t *testing.T) {
	raw := map[string]any{
		"data": map[string]any{
			"status":   "processing",
			"progress": "45",
		},
	}
	st := extractStatus(raw)
	if st.Status != "processing" || st.Progress != "45" {
		t.Fatalf("extractStatus = %+v", st)
	}

	raw = map[string]any{
		"result": map[string]any{
			"status":    "succeeded",
			"video_url": "https://cdn.example.com/v.mp4",
		},
	}
	st = extractStatus(raw)
	if st.Status != "succeeded" || st.VideoURL != "https://cdn.example.com/v.mp4" {
		t.Fatalf("extractStatus = %+v", st)
	}

	raw = map[string]any{
		"detail": map[string]any{
			"status": "failed",
			"error":  "quota exceeded",
		},
	}
	st = extractStatus(raw)
	if st.Status != "failed" || st.Error != "quota exceeded" {
		t.Fatalf("extractStatus = %+v", st)
	}
}

func TestStatusClassification(t *testing.T) {
	successes := []string{"succeeded", "finished", "complete", "completed", "done", "ok", "success", "SUCCEEDED"}
	for _, s := range successes {
		if !isSuccessStatus(s) {
			t.Errorf("isSuccessStatus(%q) = false", s)
		}
		if isFailureStatus(s) {
			t.Errorf("isFailureStatus(%q) = true", s)
		}
	}

	failures := []string{"failed", "error", "cancelled", "canceled", "FAILED"}
	for _, s := range failures {
		if !isFailureStatus(s) {
			t.Errorf("isFailureStatus(%q) = false", s)
		}
	}

	for _, s := range []string{"processing", "queued", "pending", ""} {
		if isSuccessStatus(s) || isFailureStatus(s) {
			t.Errorf("status %q classified as terminal", s)
		}
	}
}

func TestTaskStatusDone(t *testing.T) {
	if (TaskStatus{Status: "processing"}).Done() {
		t.Error("processing marked done")
	}
	if !(TaskStatus{Status: "completed"}).Done() {
		t.Error("completed not marked done")
	}
	if !(TaskStatus{Status: "failed"}).Done() {
		t.Error("failed not marked done")
	}
	if !(TaskStatus{Status: "completed"}).Succeeded() {
		t.Error("completed not marked succeeded")
	}
	if (TaskStatus{Status: "failed"}).Succeeded() {
		t.Error("failed marked succeeded")
	}
}
