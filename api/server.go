// Package api exposes the HTTP surface over gin.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"reelsmith/media"
	"reelsmith/prompts"
	"reelsmith/storage"
	"reelsmith/store"
	"reelsmith/tts"
	"reelsmith/types"
	"reelsmith/workflow"
)

// Analyzer produces and refines generation prompts.
type Analyzer interface {
	Analyze(ctx context.Context, userInput, userContext, referenceURL string) (*prompts.AnalysisResult, error)
	Refine(ctx context.Context, promptType prompts.PromptType, originalPrompt, userFeedback string) (string, error)
}

// WorkflowRunner launches generation jobs.
type WorkflowRunner interface {
	Run(ctx context.Context, req types.GenerationRequest) error
	RunWithPrompt(ctx context.Context, req types.GenerationRequest, videoPrompt string) error
}

// StatusReader answers job status polls when the job is not in local memory.
type StatusReader interface {
	GetStatus(ctx context.Context, jobID string) (*types.JobStatus, error)
}

// SpeechService runs text-to-speech synthesis.
type SpeechService interface {
	ProcessRequest(ctx context.Context, req *types.Audio) (*types.Audio, error)
	ListVoices(languageCode string) ([]tts.Voice, error)
}

// Objects is the slice of the storage layer the handlers need.
type Objects interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, public bool) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string, maxKeys int32, continuationToken *string) (*s3.ListObjectsV2Output, error)
	PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (*storage.PresignedURL, error)
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (*storage.PresignedURL, error)
	PublicURL(key string) string
	Bucket() string
}

// Composer runs media post-processing.
type Composer interface {
	MergeVideos(videoPaths []string, outputVideoID int64, format string) (string, error)
	MergeAudio(videoPath, audioPath string, outputVideoID int64, audioStart, videoStart float64, format string) (string, error)
	ReplaceAudio(videoPath, audioPath string, outputVideoID int64, format string) (string, error)
	AddBackgroundMusic(videoPath, musicPath string, outputVideoID int64, musicVolume, originalVolume float64, format string) (string, error)
	ExtractAudio(videoPath string, outputAudioID int64, audioFormat string) (string, error)
	Probe(path string) (*media.Info, error)
}

// Deps aggregates the services the API serves. Optional integrations may be
// nil; their endpoints answer 503 until configured.
type Deps struct {
	Store    *store.Store
	Objects  Objects
	Analyzer Analyzer
	TTS      SpeechService
	Media    Composer
	Manager  *workflow.Manager
	Runner   WorkflowRunner
	Cache    StatusReader
}

// NewRouter constructs a gin engine with all routes registered.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	RegisterHealthRoutes(r, d)
	RegisterUserRoutes(r, d.Store)
	RegisterVideoRoutes(r, d.Store)
	RegisterAudioRoutes(r, d.Store, d.TTS)
	RegisterFileRoutes(r, d.Store, d.Objects)
	RegisterStorageRoutes(r, d.Store, d.Objects)
	RegisterGenerationRoutes(r, d.Analyzer, d.Manager, d.Runner, d.Cache)
	RegisterSessionRoutes(r, d.Store, d.Manager, d.Runner)
	RegisterMediaRoutes(r, d.Media)
	return r
}

// corsMiddleware allows browser frontends on other origins to call the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RegisterHealthRoutes registers the liveness endpoint.
func RegisterHealthRoutes(r *gin.Engine, d Deps) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"integrations": gin.H{
				"storage":    d.Objects != nil,
				"analyzer":   d.Analyzer != nil,
				"tts":        d.TTS != nil,
				"media":      d.Media != nil,
				"generation": d.Runner != nil,
				"cache":      d.Cache != nil,
			},
		})
	})
}

func notConfigured(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " is not configured"})
}
