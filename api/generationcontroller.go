package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reelsmith/cache"
	"reelsmith/config"
	"reelsmith/prompts"
	"reelsmith/types"
	"reelsmith/workflow"
)

// RegisterGenerationRoutes registers prompt analysis and video generation
// endpoints. Generation runs asynchronously: the POST answers 202 with a job
// id and clients poll the status endpoint.
func RegisterGenerationRoutes(r *gin.Engine, analyzer Analyzer, manager *workflow.Manager, runner WorkflowRunner, statuses StatusReader) {
	h := &generationHandlers{
		analyzer: analyzer,
		manager:  manager,
		runner:   runner,
		statuses: statuses,
	}
	g := r.Group("/api/generation")
	g.POST("/analyze", h.analyze)
	g.POST("/refine-prompt", h.refinePrompt)
	g.POST("/generate-video", h.generateVideo)
	g.POST("/complete-workflow", h.completeWorkflow)
	g.GET("/jobs/:id/status", h.jobStatus)
}

type generationHandlers struct {
	analyzer Analyzer
	manager  *workflow.Manager
	runner   WorkflowRunner
	statuses StatusReader
}

// AnalyzeRequest is the payload for prompt analysis.
type AnalyzeRequest struct {
	UserInput    string `json:"user_input" binding:"required"`
	UserContext  string `json:"user_context"`
	ReferenceURL string `json:"reference_url"`
}

func (h *generationHandlers) analyze(c *gin.Context) {
	if h.analyzer == nil {
		notConfigured(c, "prompt analysis")
		return
	}
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req.UserInput, req.UserContext, req.ReferenceURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RefinePromptRequest asks for a prompt rewrite based on user feedback.
type RefinePromptRequest struct {
	PromptType     string `json:"prompt_type" binding:"required"`
	OriginalPrompt string `json:"original_prompt" binding:"required"`
	UserFeedback   string `json:"user_feedback" binding:"required"`
}

func (h *generationHandlers) refinePrompt(c *gin.Context) {
	if h.analyzer == nil {
		notConfigured(c, "prompt analysis")
		return
	}
	var req RefinePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	promptType := prompts.PromptType(req.PromptType)
	if promptType != prompts.VideoPrompt && promptType != prompts.AudioPrompt {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt_type must be \"video\" or \"audio\""})
		return
	}

	refined, err := h.analyzer.Refine(c.Request.Context(), promptType, req.OriginalPrompt, req.UserFeedback)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"prompt_type":    req.PromptType,
		"refined_prompt": refined,
	})
}

// GenerateVideoRequest drives the generation API with a caller-supplied prompt,
// skipping analysis.
type GenerateVideoRequest struct {
	UserEmail string   `json:"user_email"`
	Prompt    string   `json:"prompt" binding:"required"`
	Model     string   `json:"model"`
	Enhance   bool     `json:"enhance_prompt"`
	ImageURLs []string `json:"image_urls"`
}

func (h *generationHandlers) generateVideo(c *gin.Context) {
	if h.runner == nil {
		notConfigured(c, "video generation")
		return
	}
	var req GenerateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gen := types.GenerationRequest{
		UUID:      uuid.NewString(),
		UserEmail: req.UserEmail,
		UserInput: req.Prompt,
		Model:     req.Model,
		Enhance:   req.Enhance,
		ImageURLs: req.ImageURLs,
	}
	launchJob(h.manager, gen.UUID, func(ctx context.Context) error {
		return h.runner.RunWithPrompt(ctx, gen, req.Prompt)
	})
	c.JSON(http.StatusAccepted, gin.H{"job_id": gen.UUID, "status": "accepted"})
}

func (h *generationHandlers) completeWorkflow(c *gin.Context) {
	if h.runner == nil {
		notConfigured(c, "video generation")
		return
	}
	var req types.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserInput == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_input is required"})
		return
	}
	if req.UUID == "" {
		req.UUID = uuid.NewString()
	}

	launchJob(h.manager, req.UUID, func(ctx context.Context) error {
		return h.runner.Run(ctx, req)
	})
	c.JSON(http.StatusAccepted, gin.H{"job_id": req.UUID, "status": "accepted"})
}

func (h *generationHandlers) jobStatus(c *gin.Context) {
	jobID := c.Param("id")
	if status, ok := h.manager.Snapshot(jobID); ok {
		c.JSON(http.StatusOK, status)
		return
	}

	// Job not in local memory; it may have run on another instance or been
	// evicted after completion. Fall back to the cache.
	if h.statuses != nil {
		status, err := h.statuses.GetStatus(c.Request.Context(), jobID)
		if err == nil {
			c.JSON(http.StatusOK, status)
			return
		}
		if !errors.Is(err, cache.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
}

// launchJob registers the job and runs it in the background with the workflow
// deadline.
func launchJob(manager *workflow.Manager, jobID string, run func(context.Context) error) {
	manager.NewJob(jobID)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.WorkflowTimeout)
		defer cancel()
		if err := run(ctx); err != nil {
			log.Printf("api: job %s failed: %v", jobID, err)
		}
	}()
}
