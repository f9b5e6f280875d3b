package videogen

import (
	"fmt"
	"strings"
)

// Providers vary in how they envelope responses; fields may sit at the top
// level or under data/result/detail. Extraction tries each location in order.

func extractTaskID(raw map[string]any) string {
	candidates := []any{
		dig(raw, "data", "id"),
		raw["id"],
		dig(raw, "result", "id"),
		raw["task_id"],
		dig(raw, "data", "task_id"),
		dig(raw, "detail", "id"),
	}
	for _, c := range candidates {
		if s := asString(c); s != "" {
			return s
		}
	}
	return ""
}

func extractStatus(raw map[string]any) TaskStatus {
	return TaskStatus{
		Status: firstString(
			dig(raw, "data", "status"),
			raw["status"],
			dig(raw, "result", "status"),
			dig(raw, "detail", "status"),
		),
		VideoURL: firstString(
			dig(raw, "data", "url"),
			dig(raw, "data", "video_url"),
			dig(raw, "data", "video"),
			raw["url"],
			dig(raw, "result", "url"),
			dig(raw, "result", "video_url"),
			raw["video_url"],
			dig(raw, "detail", "video_url"),
			dig(raw, "detail", "url"),
		),
		Progress: firstString(
			dig(raw, "data", "progress"),
			raw["progress"],
			dig(raw, "result", "progress"),
			dig(raw, "detail", "progress"),
		),
		Error: firstString(
			dig(raw, "data", "error"),
			raw["error"],
			dig(raw, "result", "error"),
			dig(raw, "detail", "error"),
		),
	}
}

func isSuccessStatus(status string) bool {
	switch strings.ToLower(status) {
	case "succeeded", "finished", "complete", "completed", "done", "ok", "success":
		return true
	}
	return false
}

func isFailureStatus(status string) bool {
	switch strings.ToLower(status) {
	case "failed", "error", "cancelled", "canceled":
		return true
	}
	return false
}

func dig(raw map[string]any, outer, inner string) any {
	m, ok := raw[outer].(map[string]any)
	if !ok {
		return nil
	}
	return m[inner]
}

func firstString(candidates ...any) string {
	for _, c := range candidates {
		if s := asString(c); s != "" {
			return s
		}
	}
	return ""
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	default:
		return ""
	}
}
