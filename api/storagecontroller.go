package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"reelsmith/config"
	"reelsmith/storage"
	"reelsmith/store"
)

// RegisterStorageRoutes registers presigned URL and object browsing endpoints.
func RegisterStorageRoutes(r *gin.Engine, st *store.Store, objects Objects) {
	h := &storageHandlers{store: st, objects: objects}
	g := r.Group("/api/storage")
	g.POST("/upload-urls", h.uploadURLs)
	g.GET("/download-url", h.downloadURL)
	g.GET("/objects", h.listObjects)
}

type storageHandlers struct {
	store   *store.Store
	objects Objects
}

// UploadURLsRequest asks for presigned PUT URLs for a batch of files.
type UploadURLsRequest struct {
	UserEmail string `json:"user_email"`
	Files     []struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"content_type"`
		Size        int64  `json:"size"`
	} `json:"files" binding:"required"`
}

// UploadURLEntry is the signed slot for one requested file.
type UploadURLEntry struct {
	Filename  string                `json:"filename"`
	ObjectKey string                `json:"object_key,omitempty"`
	Upload    *storage.PresignedURL `json:"upload,omitempty"`
	Error     string                `json:"error,omitempty"`
}

func (h *storageHandlers) uploadURLs(c *gin.Context) {
	if h.objects == nil {
		notConfigured(c, "object storage")
		return
	}
	var req UploadURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files requested"})
		return
	}

	ctx := c.Request.Context()
	var userID int64
	if req.UserEmail != "" {
		if user, err := h.store.GetUserByEmail(ctx, req.UserEmail); err == nil {
			userID = user.ID
		}
	}

	entries := make([]UploadURLEntry, 0, len(req.Files))
	for _, f := range req.Files {
		entry := UploadURLEntry{Filename: f.Filename}
		if err := storage.ValidateUpload(f.Filename, f.Size); err != nil {
			entry.Error = err.Error()
			entries = append(entries, entry)
			continue
		}
		key := storage.ObjectKey(userID, f.Filename)
		signed, err := h.objects.PresignUpload(ctx, key, f.ContentType, config.UploadURLExpiry)
		if err != nil {
			entry.Error = err.Error()
			entries = append(entries, entry)
			continue
		}
		entry.ObjectKey = key
		entry.Upload = signed
		entries = append(entries, entry)
	}
	c.JSON(http.StatusOK, gin.H{"urls": entries})
}

func (h *storageHandlers) downloadURL(c *gin.Context) {
	if h.objects == nil {
		notConfigured(c, "object storage")
		return
	}
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	expiry := config.DownloadURLExpiry
	if v := c.Query("expiry_minutes"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expiry_minutes"})
			return
		}
		expiry = time.Duration(minutes) * time.Minute
	}

	signed, err := h.objects.PresignDownload(c.Request.Context(), key, expiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, signed)
}

// ObjectEntry summarizes one stored object for listings.
type ObjectEntry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

func (h *storageHandlers) listObjects(c *gin.Context) {
	if h.objects == nil {
		notConfigured(c, "object storage")
		return
	}
	maxKeys := int32(100)
	if v := c.Query("max_keys"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_keys"})
			return
		}
		maxKeys = int32(n)
	}
	var token *string
	if v := c.Query("continuation_token"); v != "" {
		token = &v
	}

	out, err := h.objects.List(c.Request.Context(), c.Query("prefix"), maxKeys, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entries := make([]ObjectEntry, 0, len(out.Contents))
	for _, obj := range out.Contents {
		entry := ObjectEntry{}
		if obj.Key != nil {
			entry.Key = *obj.Key
		}
		if obj.Size != nil {
			entry.Size = *obj.Size
		}
		if obj.LastModified != nil {
			entry.LastModified = *obj.LastModified
		}
		entries = append(entries, entry)
	}

	resp := gin.H{"objects": entries}
	if out.NextContinuationToken != nil {
		resp["next_continuation_token"] = *out.NextContinuationToken
	}
	c.JSON(http.StatusOK, resp)
}
