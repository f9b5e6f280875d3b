package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reelsmith/store"
	"reelsmith/types"
	"reelsmith/workflow"
)

// RegisterSessionRoutes registers video session endpoints. Sessions group a
// user's uploads and one generation run.
func RegisterSessionRoutes(r *gin.Engine, st *store.Store, manager *workflow.Manager, runner WorkflowRunner) {
	h := &sessionHandlers{store: st, manager: manager, runner: runner}
	g := r.Group("/api/sessions")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
	g.GET("/:id/files", h.files)
	g.POST("/:id/start-processing", h.startProcessing)
	g.POST("/:id/complete", h.complete)
}

type sessionHandlers struct {
	store   *store.Store
	manager *workflow.Manager
	runner  WorkflowRunner
}

// CreateSessionRequest is the payload for opening a session.
type CreateSessionRequest struct {
	UserEmail   string `json:"user_email" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UserPrompt  string `json:"user_prompt"`
}

func (h *sessionHandlers) create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.store.CreateSession(c.Request.Context(), &types.Session{
		UserEmail:   req.UserEmail,
		Name:        req.Name,
		Description: req.Description,
		UserPrompt:  req.UserPrompt,
	})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *sessionHandlers) list(c *gin.Context) {
	skip, limit := pagination(c)
	email := c.Query("user_email")
	ctx := c.Request.Context()

	sessions, err := h.store.ListSessions(ctx, email, skip, limit)
	if err != nil {
		storeError(c, err)
		return
	}
	total, err := h.store.CountSessions(ctx, email)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    total,
		"skip":     skip,
		"limit":    limit,
	})
}

func (h *sessionHandlers) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	sess, err := h.store.GetSession(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// UpdateSessionRequest carries optional field changes; omitted fields are untouched.
type UpdateSessionRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Status      *types.SessionStatus `json:"status"`
	UserPrompt  *string              `json:"user_prompt"`
	VideoPrompt *string              `json:"video_prompt"`
	AudioPrompt *string              `json:"audio_prompt"`
}

func (h *sessionHandlers) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.store.UpdateSession(c.Request.Context(), id, store.SessionUpdate{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		UserPrompt:  req.UserPrompt,
		VideoPrompt: req.VideoPrompt,
		AudioPrompt: req.AudioPrompt,
	})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *sessionHandlers) remove(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteSession(c.Request.Context(), id); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

func (h *sessionHandlers) files(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	skip, limit := pagination(c)
	ctx := c.Request.Context()

	if _, err := h.store.GetSession(ctx, id); err != nil {
		storeError(c, err)
		return
	}
	files, err := h.store.ListFilesBySession(ctx, id, skip, limit)
	if err != nil {
		storeError(c, err)
		return
	}
	total, err := h.store.CountFilesBySession(ctx, id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"total": total,
		"skip":  skip,
		"limit": limit,
	})
}

// startProcessing launches the generation workflow with the session's prompt.
func (h *sessionHandlers) startProcessing(c *gin.Context) {
	if h.runner == nil {
		notConfigured(c, "video generation")
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	sess, err := h.store.GetSession(ctx, id)
	if err != nil {
		storeError(c, err)
		return
	}
	if sess.UserPrompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session has no user prompt"})
		return
	}
	if sess.Status == types.SessionProcessing {
		c.JSON(http.StatusConflict, gin.H{"error": "session is already processing"})
		return
	}

	processing := types.SessionProcessing
	if _, err := h.store.UpdateSession(ctx, id, store.SessionUpdate{Status: &processing}); err != nil {
		storeError(c, err)
		return
	}

	req := types.GenerationRequest{
		UUID:      uuid.NewString(),
		UserEmail: sess.UserEmail,
		UserInput: sess.UserPrompt,
		SessionID: sess.ID,
	}
	launchJob(h.manager, req.UUID, func(jobCtx context.Context) error {
		err := h.runner.Run(jobCtx, req)
		h.recordOutcome(sess.ID, req.UUID, err)
		return err
	})
	c.JSON(http.StatusAccepted, gin.H{"job_id": req.UUID, "session_id": sess.ID, "status": "accepted"})
}

// recordOutcome persists the workflow result on the session row.
func (h *sessionHandlers) recordOutcome(sessionID int64, jobID string, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	upd := store.SessionUpdate{}
	if runErr != nil {
		failed := types.SessionFailed
		upd.Status = &failed
	} else {
		completed := types.SessionCompleted
		upd.Status = &completed
		if status, ok := h.manager.Snapshot(jobID); ok {
			if status.ObjectKey != "" {
				upd.OutputVideoPath = &status.ObjectKey
			}
			if status.VideoPrompt != "" {
				upd.VideoPrompt = &status.VideoPrompt
			}
			if status.AudioPrompt != "" {
				upd.AudioPrompt = &status.AudioPrompt
			}
		}
	}
	if _, err := h.store.UpdateSession(ctx, sessionID, upd); err != nil {
		log.Printf("api: record outcome for session %d failed: %v", sessionID, err)
	}
}

// CompleteSessionRequest closes a session, optionally recording the output.
type CompleteSessionRequest struct {
	OutputVideoPath string `json:"output_video_path"`
}

func (h *sessionHandlers) complete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	completed := types.SessionCompleted
	upd := store.SessionUpdate{Status: &completed}
	if req.OutputVideoPath != "" {
		upd.OutputVideoPath = &req.OutputVideoPath
	}
	sess, err := h.store.UpdateSession(c.Request.Context(), id, upd)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
