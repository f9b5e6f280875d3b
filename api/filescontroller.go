package api

import (
	"context"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reelsmith/config"
	"reelsmith/storage"
	"reelsmith/store"
	"reelsmith/types"
)

// RegisterFileRoutes registers upload and file bookkeeping endpoints.
func RegisterFileRoutes(r *gin.Engine, st *store.Store, objects Objects) {
	h := &fileHandlers{store: st, objects: objects}
	g := r.Group("/api/files")
	g.POST("/upload", h.upload)
	g.POST("/upload-batch", h.uploadBatch)
	g.GET("/:id", h.get)
	g.GET("/user/:email", h.byUser)
	g.DELETE("/:id", h.remove)
}

type fileHandlers struct {
	store   *store.Store
	objects Objects
}

func (h *fileHandlers) upload(c *gin.Context) {
	if h.objects == nil {
		notConfigured(c, "object storage")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	rec, err := h.uploadOne(c, fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *fileHandlers) uploadBatch(c *gin.Context) {
	if h.objects == nil {
		notConfigured(c, "object storage")
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	uploaded := make([]*types.StoredFile, 0, len(files))
	failed := make([]gin.H, 0)
	for _, fh := range files {
		rec, err := h.uploadOne(c, fh)
		if err != nil {
			failed = append(failed, gin.H{"filename": fh.Filename, "error": err.Error()})
			continue
		}
		uploaded = append(uploaded, rec)
	}
	c.JSON(http.StatusCreated, gin.H{"uploaded": uploaded, "failed": failed})
}

// uploadOne validates, stores, and records a single multipart file. Form
// fields user_email, session_id, description, and is_public apply to each file.
func (h *fileHandlers) uploadOne(c *gin.Context, fh *multipart.FileHeader) (*types.StoredFile, error) {
	ctx := c.Request.Context()
	if err := storage.ValidateUpload(fh.Filename, fh.Size); err != nil {
		return nil, err
	}

	userEmail := c.PostForm("user_email")
	var userID int64
	if userEmail != "" {
		if user, err := h.store.GetUserByEmail(ctx, userEmail); err == nil {
			userID = user.ID
		}
	}
	isPublic := c.PostForm("is_public") == "true"
	sessionID, _ := strconv.ParseInt(c.PostForm("session_id"), 10, 64)

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	key := storage.ObjectKey(userID, fh.Filename)
	contentType := fh.Header.Get("Content-Type")
	if err := h.objects.Put(ctx, key, src, contentType, isPublic); err != nil {
		return nil, err
	}

	rec := &types.StoredFile{
		UserEmail:        userEmail,
		SessionID:        sessionID,
		OriginalFilename: fh.Filename,
		ObjectKey:        key,
		Bucket:           h.objects.Bucket(),
		Size:             fh.Size,
		ContentType:      contentType,
		Category:         config.FileCategory(fh.Filename),
		Description:      c.PostForm("description"),
		IsPublic:         isPublic,
	}
	if isPublic {
		rec.PublicURL = h.objects.PublicURL(key)
	}

	rec, err = h.store.CreateFile(ctx, rec)
	if err != nil {
		return nil, err
	}
	if sessionID > 0 {
		h.syncSessionFileCount(ctx, sessionID)
	}
	return rec, nil
}

// syncSessionFileCount refreshes the denormalized counter on the session row.
func (h *fileHandlers) syncSessionFileCount(ctx context.Context, sessionID int64) {
	count, err := h.store.CountFilesBySession(ctx, sessionID)
	if err != nil {
		log.Printf("api: count files for session %d failed: %v", sessionID, err)
		return
	}
	if _, err := h.store.UpdateSession(ctx, sessionID, store.SessionUpdate{TotalFiles: &count}); err != nil {
		log.Printf("api: update session %d file count failed: %v", sessionID, err)
	}
}

func (h *fileHandlers) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := h.store.GetFile(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *fileHandlers) byUser(c *gin.Context) {
	files, err := h.store.ListFilesByUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *fileHandlers) remove(c *gin.Context) {
	if h.objects == nil {
		notConfigured(c, "object storage")
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rec, err := h.store.GetFile(ctx, id)
	if err != nil {
		storeError(c, err)
		return
	}

	if err := h.objects.Delete(ctx, rec.ObjectKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete object: " + err.Error()})
		return
	}
	if err := h.store.DeleteFile(ctx, id); err != nil {
		storeError(c, err)
		return
	}
	if rec.SessionID > 0 {
		h.syncSessionFileCount(ctx, rec.SessionID)
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}
