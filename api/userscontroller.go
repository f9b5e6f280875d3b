package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reelsmith/store"
)

// RegisterUserRoutes registers user CRUD endpoints.
func RegisterUserRoutes(r *gin.Engine, st *store.Store) {
	h := &userHandlers{store: st}
	g := r.Group("/api/users")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/email/:email", h.getByEmail)
}

type userHandlers struct {
	store *store.Store
}

// CreateUserRequest is the payload for registering a user.
type CreateUserRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *userHandlers) create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), email)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *userHandlers) list(c *gin.Context) {
	skip, limit := pagination(c)
	users, err := h.store.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *userHandlers) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user, err := h.store.GetUser(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *userHandlers) getByEmail(c *gin.Context) {
	user, err := h.store.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
