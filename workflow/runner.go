package workflow

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"reelsmith/config"
	"reelsmith/prompts"
	"reelsmith/storage"
	"reelsmith/store"
	"reelsmith/types"
	"reelsmith/videogen"
)

// PromptAnalyzer turns user input into video and audio prompts.
type PromptAnalyzer interface {
	Analyze(ctx context.Context, userInput, userContext, referenceURL string) (*prompts.AnalysisResult, error)
}

// Generator drives the remote video generation task lifecycle.
type Generator interface {
	CreateTask(ctx context.Context, req videogen.CreateRequest) (string, error)
	Poll(ctx context.Context, taskID string, onProgress func(videogen.TaskStatus)) (videogen.TaskStatus, error)
	Download(ctx context.Context, videoURL, outputPath string) (int64, error)
}

// ObjectStore uploads finished videos to durable storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, public bool) error
}

// Runner executes the complete generation workflow for one request:
// analyze, create the remote task, poll, download, store.
type Runner struct {
	manager  *Manager
	analyzer PromptAnalyzer
	gen      Generator
	objects  ObjectStore
	store    *store.Store
}

// NewRunner wires a workflow runner.
func NewRunner(manager *Manager, analyzer PromptAnalyzer, gen Generator, objects ObjectStore, st *store.Store) *Runner {
	return &Runner{
		manager:  manager,
		analyzer: analyzer,
		gen:      gen,
		objects:  objects,
		store:    st,
	}
}

// Run executes the workflow. The job must already be registered with the
// manager; callers typically invoke Run in a goroutine and poll for status.
func (r *Runner) Run(ctx context.Context, req types.GenerationRequest) error {
	videoPrompt, err := r.analyze(ctx, req)
	if err != nil {
		r.manager.Fail(req.UUID, fmt.Errorf("analyze: %w", err))
		return err
	}
	return r.RunWithPrompt(ctx, req, videoPrompt)
}

// RunWithPrompt executes the workflow with an already-final video prompt,
// skipping the analysis step.
func (r *Runner) RunWithPrompt(ctx context.Context, req types.GenerationRequest, videoPrompt string) error {
	video, err := r.createRecord(ctx, req, videoPrompt)
	if err != nil {
		r.manager.Fail(req.UUID, fmt.Errorf("create record: %w", err))
		return err
	}

	taskID, err := r.createTask(ctx, req, video, videoPrompt)
	if err != nil {
		r.failVideo(ctx, video.ID, err)
		r.manager.Fail(req.UUID, fmt.Errorf("create task: %w", err))
		return err
	}

	status, err := r.poll(ctx, req.UUID, taskID)
	if err != nil {
		r.failVideo(ctx, video.ID, err)
		r.manager.Fail(req.UUID, fmt.Errorf("poll: %w", err))
		return err
	}

	localPath, size, err := r.download(ctx, req.UUID, video.ID, status.VideoURL)
	if err != nil {
		r.failVideo(ctx, video.ID, err)
		r.manager.Fail(req.UUID, fmt.Errorf("download: %w", err))
		return err
	}

	objectKey, err := r.storeVideo(ctx, req, video.ID, localPath)
	if err != nil {
		r.failVideo(ctx, video.ID, err)
		r.manager.Fail(req.UUID, fmt.Errorf("store: %w", err))
		return err
	}

	completed := types.VideoCompleted
	if _, err := r.store.UpdateVideo(ctx, video.ID, store.VideoUpdate{
		Status:    &completed,
		VideoURL:  &status.VideoURL,
		ObjectKey: &objectKey,
		FileSize:  &size,
	}); err != nil {
		r.manager.Fail(req.UUID, fmt.Errorf("finalize record: %w", err))
		return err
	}

	r.manager.Complete(req.UUID, status.VideoURL, objectKey)
	log.Printf("workflow: job %s complete (video %d, %d bytes)", req.UUID, video.ID, size)
	return nil
}

func (r *Runner) analyze(ctx context.Context, req types.GenerationRequest) (string, error) {
	r.manager.SetState(req.UUID, types.StateAnalyzing)
	r.manager.AddLog(req.UUID, "Analyzing user input...")

	result, err := r.analyzer.Analyze(ctx, req.UserInput, req.UserContext, req.ReferenceURL)
	if err != nil {
		return "", err
	}
	if result.VideoPrompt == "" {
		return "", fmt.Errorf("no video prompt produced")
	}

	r.manager.SetAnalysis(req.UUID, &result.Analysis, result.VideoPrompt, result.AudioPrompt)
	if result.Warning != "" {
		r.manager.AddLog(req.UUID, "Warning: "+result.Warning)
	}
	r.manager.AddLog(req.UUID, "Generated video and audio prompts")
	return result.VideoPrompt, nil
}

func (r *Runner) createRecord(ctx context.Context, req types.GenerationRequest, videoPrompt string) (*types.Video, error) {
	model := req.Model
	if model == "" {
		model = config.DefaultGenerationModel
	}
	video, err := r.store.CreateVideo(ctx, &types.Video{
		UserEmail:   req.UserEmail,
		VideoTaskID: req.UUID,
		Prompt:      videoPrompt,
		Model:       model,
	})
	if err != nil {
		return nil, err
	}
	r.manager.SetVideoID(req.UUID, video.ID)
	return video, nil
}

func (r *Runner) createTask(ctx context.Context, req types.GenerationRequest, video *types.Video, videoPrompt string) (string, error) {
	r.manager.SetState(req.UUID, types.StateCreating)
	r.manager.AddLog(req.UUID, "Creating generation task...")

	taskID, err := r.gen.CreateTask(ctx, videogen.CreateRequest{
		Prompt:        videoPrompt,
		Model:         video.Model,
		EnhancePrompt: req.Enhance,
		Images:        req.ImageURLs,
	})
	if err != nil {
		return "", err
	}

	if _, err := r.store.UpdateVideo(ctx, video.ID, store.VideoUpdate{RemoteTaskID: &taskID}); err != nil {
		return "", err
	}
	r.manager.SetRemoteTask(req.UUID, taskID)
	r.manager.AddLog(req.UUID, "Task created: "+taskID)
	return taskID, nil
}

func (r *Runner) poll(ctx context.Context, jobID, taskID string) (videogen.TaskStatus, error) {
	r.manager.SetState(jobID, types.StatePolling)
	r.manager.AddLog(jobID, "Polling task status...")

	return r.gen.Poll(ctx, taskID, func(ts videogen.TaskStatus) {
		if ts.Progress != "" {
			r.manager.SetProgress(jobID, ts.Progress)
		}
	})
}

func (r *Runner) download(ctx context.Context, jobID string, videoID int64, videoURL string) (string, int64, error) {
	r.manager.SetState(jobID, types.StateDownloading)
	r.manager.AddLog(jobID, "Downloading generated video...")

	path := config.VideoFilePath(videoID, "mp4")
	size, err := r.gen.Download(ctx, videoURL, path)
	if err != nil {
		return "", 0, err
	}
	r.manager.AddLog(jobID, fmt.Sprintf("Downloaded %d bytes", size))
	return path, size, nil
}

func (r *Runner) storeVideo(ctx context.Context, req types.GenerationRequest, videoID int64, localPath string) (string, error) {
	r.manager.SetState(req.UUID, types.StateStoring)
	r.manager.AddLog(req.UUID, "Uploading to object storage...")

	var userID int64
	if req.UserEmail != "" {
		if user, err := r.store.GetUserByEmail(ctx, req.UserEmail); err == nil {
			userID = user.ID
		}
	}
	key := storage.ObjectKey(userID, fmt.Sprintf("generated_%d.mp4", videoID))

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := r.objects.Put(ctx, key, f, "video/mp4", false); err != nil {
		return "", err
	}
	r.manager.AddLog(req.UUID, "Stored at "+key)
	return key, nil
}

func (r *Runner) failVideo(ctx context.Context, videoID int64, cause error) {
	failed := types.VideoFailed
	msg := cause.Error()
	if _, err := r.store.UpdateVideo(ctx, videoID, store.VideoUpdate{Status: &failed, Error: &msg}); err != nil {
		log.Printf("workflow: failed to mark video %d as failed: %v", videoID, err)
	}
}
