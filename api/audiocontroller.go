package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"reelsmith/store"
	"reelsmith/types"
)

// RegisterAudioRoutes registers TTS endpoints. svc may be nil when no
// credentials are configured; synthesis then answers 503.
func RegisterAudioRoutes(r *gin.Engine, st *store.Store, svc SpeechService) {
	h := &audioHandlers{store: st, tts: svc}
	g := r.Group("/api/audio")
	g.POST("/synthesize", h.synthesize)
	g.GET("", h.list)
	g.GET("/voices", h.voices)
	g.GET("/:id", h.get)
	g.GET("/user/:email", h.listByUser)
	g.GET("/:id/download", h.download)
}

type audioHandlers struct {
	store *store.Store
	tts   SpeechService
}

// SynthesizeRequest is the payload for a TTS run. Voice parameters fall back
// to the configured defaults when omitted.
type SynthesizeRequest struct {
	UserEmail    string `json:"user_email" binding:"required"`
	TextInput    string `json:"text_input" binding:"required"`
	VoiceName    string `json:"voice_name"`
	LanguageCode string `json:"language_code"`
	AudioFormat  string `json:"audio_format"`
}

func (h *audioHandlers) synthesize(c *gin.Context) {
	if h.tts == nil {
		notConfigured(c, "text-to-speech")
		return
	}
	var req SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audio, err := h.tts.ProcessRequest(c.Request.Context(), &types.Audio{
		UserEmail:    req.UserEmail,
		TextInput:    req.TextInput,
		VoiceName:    req.VoiceName,
		LanguageCode: req.LanguageCode,
		AudioFormat:  req.AudioFormat,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, audio)
}

func (h *audioHandlers) list(c *gin.Context) {
	skip, limit := pagination(c)
	audios, err := h.store.ListAudios(c.Request.Context(), skip, limit)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, audios)
}

func (h *audioHandlers) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	audio, err := h.store.GetAudio(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, audio)
}

func (h *audioHandlers) listByUser(c *gin.Context) {
	audios, err := h.store.ListAudiosByUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, audios)
}

func (h *audioHandlers) download(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	audio, err := h.store.GetAudio(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	if audio.Status != types.AudioCompleted || audio.FilePath == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "audio is not ready"})
		return
	}
	c.FileAttachment(audio.FilePath, filepath.Base(audio.FilePath))
}

func (h *audioHandlers) voices(c *gin.Context) {
	if h.tts == nil {
		notConfigured(c, "text-to-speech")
		return
	}
	voices, err := h.tts.ListVoices(c.Query("language_code"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"voices": voices})
}
