package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gin-gonic/gin"

	"reelsmith/media"
	"reelsmith/prompts"
	"reelsmith/storage"
	"reelsmith/store"
	"reelsmith/tts"
	"reelsmith/types"
	"reelsmith/workflow"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open error: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// fakeObjects is an in-memory object store.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) Put(ctx context.Context, key string, body io.Reader, contentType string, public bool) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjects) List(ctx context.Context, prefix string, maxKeys int32, token *string) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for key, data := range f.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out.Contents = append(out.Contents, s3types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(data))),
			LastModified: aws.Time(time.Now()),
		})
	}
	return out, nil
}

func (f *fakeObjects) PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{
		URL:     "https://signed.example.com/" + key,
		Method:  http.MethodPut,
		Expires: time.Now().Add(expiry),
	}, nil
}

func (f *fakeObjects) PresignDownload(ctx context.Context, key string, expiry time.Duration) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{
		URL:     "https://signed.example.com/" + key,
		Method:  http.MethodGet,
		Expires: time.Now().Add(expiry),
	}, nil
}

func (f *fakeObjects) PublicURL(key string) string { return "https://cdn.example.com/" + key }
func (f *fakeObjects) Bucket() string              { return "test-bucket" }

// fakeAnalyzer returns canned analysis output.
type fakeAnalyzer struct {
	result    *prompts.AnalysisResult
	refineErr error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, userInput, userContext, referenceURL string) (*prompts.AnalysisResult, error) {
	if f.result != nil {
		return f.result, nil
	}
	return &prompts.AnalysisResult{
		Analysis:    types.PromptAnalysis{MainTheme: "theme", KeyElements: []string{"a"}},
		VideoPrompt: "video: " + userInput,
		AudioPrompt: "audio: " + userInput,
	}, nil
}

func (f *fakeAnalyzer) Refine(ctx context.Context, promptType prompts.PromptType, originalPrompt, userFeedback string) (string, error) {
	if f.refineErr != nil {
		return "", f.refineErr
	}
	return originalPrompt + " (refined)", nil
}

// fakeRunner completes or fails jobs synchronously through the manager.
type fakeRunner struct {
	manager *workflow.Manager
	fail    error

	mu   sync.Mutex
	runs []types.GenerationRequest
}

func (f *fakeRunner) record(req types.GenerationRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, req)
}

func (f *fakeRunner) Run(ctx context.Context, req types.GenerationRequest) error {
	f.record(req)
	if f.fail != nil {
		f.manager.Fail(req.UUID, f.fail)
		return f.fail
	}
	f.manager.Complete(req.UUID, "https://cdn.example.com/out.mp4", "public/out.mp4")
	return nil
}

func (f *fakeRunner) RunWithPrompt(ctx context.Context, req types.GenerationRequest, videoPrompt string) error {
	return f.Run(ctx, req)
}

// fakeComposer records calls and returns canned paths.
type fakeComposer struct {
	lastCall string
}

func (f *fakeComposer) MergeVideos(videoPaths []string, outputVideoID int64, format string) (string, error) {
	f.lastCall = "merge"
	return fmt.Sprintf("temp/processed_video/%d.%s", outputVideoID, format), nil
}

func (f *fakeComposer) MergeAudio(videoPath, audioPath string, outputVideoID int64, audioStart, videoStart float64, format string) (string, error) {
	f.lastCall = "merge-audio"
	return fmt.Sprintf("temp/processed_video/%d.%s", outputVideoID, format), nil
}

func (f *fakeComposer) ReplaceAudio(videoPath, audioPath string, outputVideoID int64, format string) (string, error) {
	f.lastCall = "replace-audio"
	return fmt.Sprintf("temp/processed_video/%d.%s", outputVideoID, format), nil
}

func (f *fakeComposer) AddBackgroundMusic(videoPath, musicPath string, outputVideoID int64, musicVolume, originalVolume float64, format string) (string, error) {
	f.lastCall = "background-music"
	return fmt.Sprintf("temp/processed_video/%d.%s", outputVideoID, format), nil
}

func (f *fakeComposer) ExtractAudio(videoPath string, outputAudioID int64, audioFormat string) (string, error) {
	f.lastCall = "extract-audio"
	return fmt.Sprintf("temp/generated_audio/%d.%s", outputAudioID, audioFormat), nil
}

func (f *fakeComposer) Probe(path string) (*media.Info, error) {
	f.lastCall = "probe"
	return &media.Info{Duration: 8.2, Size: 1024, Format: "mp4", Width: 1280, Height: 720, HasAudio: true}, nil
}

// fakeTTS answers synthesis without calling the cloud API.
type fakeTTS struct {
	store *store.Store
}

func (f *fakeTTS) ProcessRequest(ctx context.Context, req *types.Audio) (*types.Audio, error) {
	rec, err := f.store.CreateAudio(ctx, req)
	if err != nil {
		return nil, err
	}
	completed := types.AudioCompleted
	path := fmt.Sprintf("temp/generated_audio/%d.mp3", rec.ID)
	size := int64(64)
	return f.store.UpdateAudio(ctx, rec.ID, store.AudioUpdate{
		Status:   &completed,
		FilePath: &path,
		FileSize: &size,
	})
}

func (f *fakeTTS) ListVoices(languageCode string) ([]tts.Voice, error) {
	return []tts.Voice{{Name: "en-US-Wavenet-D", LanguageCodes: []string{"en-US"}, SsmlGender: "MALE"}}, nil
}

func TestHealth(t *testing.T) {
	r := NewRouter(Deps{Store: newTestStore(t), Objects: newFakeObjects()})

	w := doJSON(t, r, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Status       string          `json:"status"`
		Integrations map[string]bool `json:"integrations"`
	}
	decodeBody(t, w, &resp)
	if resp.Status != "healthy" {
		t.Fatalf("status = %q", resp.Status)
	}
	if !resp.Integrations["storage"] {
		t.Fatal("storage should report configured")
	}
	if resp.Integrations["tts"] {
		t.Fatal("tts should report unconfigured")
	}
}

func TestCORSPreflightAndHeaders(t *testing.T) {
	r := NewRouter(Deps{Store: newTestStore(t)})

	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS origin header")
	}
}
