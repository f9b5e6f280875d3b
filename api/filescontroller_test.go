package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"reelsmith/types"
)

func multipartUpload(t *testing.T, r *gin.Engine, path string, fields map[string]string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		field := "file"
		if strings.Contains(path, "batch") {
			field = "files"
		}
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(content)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadFile(t *testing.T) {
	st := newTestStore(t)
	objects := newFakeObjects()
	r := NewRouter(Deps{Store: st, Objects: objects})

	w := multipartUpload(t, r, "/api/files/upload",
		map[string]string{"user_email": "a@example.com", "description": "test clip"},
		map[string][]byte{"clip.mp4": []byte("fake video bytes")})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var rec types.StoredFile
	decodeBody(t, w, &rec)
	if rec.Category != "video" {
		t.Fatalf("category = %q; want video", rec.Category)
	}
	if rec.Bucket != "test-bucket" {
		t.Fatalf("bucket = %q", rec.Bucket)
	}
	if !strings.HasPrefix(rec.ObjectKey, "public/") {
		t.Fatalf("object key = %q; want public/ prefix for unknown user", rec.ObjectKey)
	}
	if _, ok := objects.objects[rec.ObjectKey]; !ok {
		t.Fatal("object not stored")
	}
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	r := NewRouter(Deps{Store: newTestStore(t), Objects: newFakeObjects()})

	w := multipartUpload(t, r, "/api/files/upload", nil,
		map[string][]byte{"malware.exe": []byte("nope")})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestUploadScopesKeyToUser(t *testing.T) {
	st := newTestStore(t)
	r := NewRouter(Deps{Store: st, Objects: newFakeObjects()})

	w := doJSON(t, r, http.MethodPost, "/api/users", map[string]string{"email": "a@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("seed user status = %d", w.Code)
	}

	w = multipartUpload(t, r, "/api/files/upload",
		map[string]string{"user_email": "a@example.com"},
		map[string][]byte{"pic.png": []byte("png bytes")})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var rec types.StoredFile
	decodeBody(t, w, &rec)
	if !strings.HasPrefix(rec.ObjectKey, "user_1/") {
		t.Fatalf("object key = %q; want user_1/ prefix", rec.ObjectKey)
	}
}

func TestUploadLinksSessionAndCounts(t *testing.T) {
	st := newTestStore(t)
	r := NewRouter(Deps{Store: st, Objects: newFakeObjects()})

	w := doJSON(t, r, http.MethodPost, "/api/sessions", map[string]string{"user_email": "a@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("seed session status = %d", w.Code)
	}

	w = multipartUpload(t, r, "/api/files/upload",
		map[string]string{"session_id": "1"},
		map[string][]byte{"track.mp3": []byte("mp3")})
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/sessions/1", nil)
	var sess types.Session
	decodeBody(t, w, &sess)
	if sess.TotalFiles != 1 {
		t.Fatalf("total_files = %d; want 1", sess.TotalFiles)
	}
}

func TestUploadBatchPartialFailure(t *testing.T) {
	r := NewRouter(Deps{Store: newTestStore(t), Objects: newFakeObjects()})

	w := multipartUpload(t, r, "/api/files/upload-batch", nil, map[string][]byte{
		"good.mp4": []byte("ok"),
		"bad.exe":  []byte("no"),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Uploaded []types.StoredFile `json:"uploaded"`
		Failed   []struct {
			Filename string `json:"filename"`
		} `json:"failed"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Uploaded) != 1 || len(resp.Failed) != 1 {
		t.Fatalf("uploaded = %d failed = %d; want 1/1", len(resp.Uploaded), len(resp.Failed))
	}
	if resp.Failed[0].Filename != "bad.exe" {
		t.Fatalf("failed filename = %q", resp.Failed[0].Filename)
	}
}

func TestListFilesByUser(t *testing.T) {
	st := newTestStore(t)
	r := NewRouter(Deps{Store: st, Objects: newFakeObjects()})

	for _, up := range []struct{ email, name string }{
		{"a@example.com", "one.mp4"},
		{"a@example.com", "two.png"},
		{"b@example.com", "other.mp3"},
	} {
		w := multipartUpload(t, r, "/api/files/upload",
			map[string]string{"user_email": up.email},
			map[string][]byte{up.name: []byte("bytes")})
		if w.Code != http.StatusCreated {
			t.Fatalf("upload %s status = %d", up.name, w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/files/user/a@example.com", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var files []types.StoredFile
	decodeBody(t, w, &files)
	if len(files) != 2 {
		t.Fatalf("files = %d; want 2", len(files))
	}
	for _, f := range files {
		if f.UserEmail != "a@example.com" {
			t.Fatalf("listing leaked file for %q", f.UserEmail)
		}
	}
}

func TestDeleteFileRemovesObject(t *testing.T) {
	st := newTestStore(t)
	objects := newFakeObjects()
	r := NewRouter(Deps{Store: st, Objects: objects})

	w := multipartUpload(t, r, "/api/files/upload", nil,
		map[string][]byte{"clip.mp4": []byte("bytes")})
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d", w.Code)
	}
	var rec types.StoredFile
	decodeBody(t, w, &rec)

	w = doJSON(t, r, http.MethodDelete, "/api/files/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d body = %s", w.Code, w.Body.String())
	}
	if len(objects.deleted) != 1 || objects.deleted[0] != rec.ObjectKey {
		t.Fatalf("deleted objects = %v", objects.deleted)
	}

	w = doJSON(t, r, http.MethodGet, "/api/files/1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d; want 404", w.Code)
	}
}
