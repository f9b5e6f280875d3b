package api

import (
	"net/http"
	"strings"
	"testing"
)

func TestUploadURLs(t *testing.T) {
	r := NewRouter(Deps{Store: newTestStore(t), Objects: newFakeObjects()})

	w := doJSON(t, r, http.MethodPost, "/api/storage/upload-urls", map[string]any{
		"files": []map[string]any{
			{"filename": "clip.mp4", "content_type": "video/mp4", "size": 1024},
			{"filename": "notes.exe", "size": 10},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		URLs []UploadURLEntry `json:"urls"`
	}
	decodeBody(t, w, &resp)
	if len(resp.URLs) != 2 {
		t.Fatalf("got %d entries; want 2", len(resp.URLs))
	}
	good, bad := resp.URLs[0], resp.URLs[1]
	if good.Upload == nil || good.Upload.Method != http.MethodPut {
		t.Fatalf("good entry = %+v", good)
	}
	if !strings.HasSuffix(good.ObjectKey, ".mp4") {
		t.Fatalf("object key = %q", good.ObjectKey)
	}
	if bad.Error == "" || bad.Upload != nil {
		t.Fatalf("bad entry = %+v", bad)
	}
}

func TestDownloadURL(t *testing.T) {
	r := NewRouter(Deps{Store: newTestStore(t), Objects: newFakeObjects()})

	w := doJSON(t, r, http.MethodGet, "/api/storage/download-url?key=user_1/clip.mp4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		URL    string `json:"url"`
		Method string `json:"method"`
	}
	decodeBody(t, w, &resp)
	if resp.Method != http.MethodGet || !strings.Contains(resp.URL, "user_1/clip.mp4") {
		t.Fatalf("resp = %+v", resp)
	}

	w = doJSON(t, r, http.MethodGet, "/api/storage/download-url", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing key status = %d; want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/storage/download-url?key=x&expiry_minutes=-5", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad expiry status = %d; want 400", w.Code)
	}
}

func TestListObjects(t *testing.T) {
	objects := newFakeObjects()
	objects.objects["user_1/a.mp4"] = []byte("aaa")
	objects.objects["user_1/b.mp4"] = []byte("bb")
	objects.objects["user_2/c.mp4"] = []byte("c")
	r := NewRouter(Deps{Store: newTestStore(t), Objects: objects})

	w := doJSON(t, r, http.MethodGet, "/api/storage/objects?prefix=user_1/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Objects []ObjectEntry `json:"objects"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Objects) != 2 {
		t.Fatalf("got %d objects; want 2", len(resp.Objects))
	}
}

func TestStorageUnconfigured(t *testing.T) {
	r := NewRouter(Deps{Store: newTestStore(t)})

	w := doJSON(t, r, http.MethodGet, "/api/storage/download-url?key=x", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", w.Code)
	}
}
