package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reelsmith/config"
	"reelsmith/store"
	"reelsmith/types"
)

// RegisterVideoRoutes registers video record CRUD endpoints.
func RegisterVideoRoutes(r *gin.Engine, st *store.Store) {
	h := &videoHandlers{store: st}
	g := r.Group("/api/videos")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/user/:email", h.listByUser)
	g.GET("/task/:taskID", h.getByTask)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

type videoHandlers struct {
	store *store.Store
}

// CreateVideoRequest is the payload for recording a generation job manually.
type CreateVideoRequest struct {
	UserEmail   string `json:"user_email" binding:"required"`
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
	VideoTaskID string `json:"video_task_id"`
}

func (h *videoHandlers) create(c *gin.Context) {
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.VideoTaskID == "" {
		req.VideoTaskID = uuid.NewString()
	}
	if req.Model == "" {
		req.Model = config.DefaultGenerationModel
	}

	video, err := h.store.CreateVideo(c.Request.Context(), &types.Video{
		UserEmail:   req.UserEmail,
		VideoTaskID: req.VideoTaskID,
		Prompt:      req.Prompt,
		Model:       req.Model,
	})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

func (h *videoHandlers) list(c *gin.Context) {
	skip, limit := pagination(c)
	videos, err := h.store.ListVideos(c.Request.Context(), skip, limit)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *videoHandlers) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	video, err := h.store.GetVideo(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *videoHandlers) listByUser(c *gin.Context) {
	videos, err := h.store.ListVideosByUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *videoHandlers) getByTask(c *gin.Context) {
	video, err := h.store.GetVideoByTaskID(c.Request.Context(), c.Param("taskID"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// UpdateVideoRequest carries optional field changes; omitted fields are untouched.
type UpdateVideoRequest struct {
	Status    *types.VideoStatus `json:"status"`
	VideoURL  *string            `json:"video_url"`
	ObjectKey *string            `json:"object_key"`
	FileSize  *int64             `json:"file_size"`
	Error     *string            `json:"error"`
}

func (h *videoHandlers) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := h.store.UpdateVideo(c.Request.Context(), id, store.VideoUpdate{
		Status:    req.Status,
		VideoURL:  req.VideoURL,
		ObjectKey: req.ObjectKey,
		FileSize:  req.FileSize,
		Error:     req.Error,
	})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// remove soft-deletes: the row stays for bookkeeping with status "deleted".
func (h *videoHandlers) remove(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	deleted := types.VideoDeleted
	if _, err := h.store.UpdateVideo(c.Request.Context(), id, store.VideoUpdate{Status: &deleted}); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}
