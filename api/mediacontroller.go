package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterMediaRoutes registers FFmpeg post-processing endpoints. These
// operate on server-local paths, typically files staged under the temp dirs.
func RegisterMediaRoutes(r *gin.Engine, composer Composer) {
	h := &mediaHandlers{media: composer}
	g := r.Group("/api/media")
	g.POST("/merge", h.merge)
	g.POST("/add-audio", h.addAudio)
	g.POST("/background-music", h.backgroundMusic)
	g.POST("/extract-audio", h.extractAudio)
	g.GET("/info", h.info)
}

type mediaHandlers struct {
	media Composer
}

// outputID picks the id used to name the output file.
func outputID(requested int64) int64 {
	if requested > 0 {
		return requested
	}
	return time.Now().Unix()
}

// MergeRequest concatenates clips into one video.
type MergeRequest struct {
	VideoPaths []string `json:"video_paths" binding:"required"`
	OutputID   int64    `json:"output_id"`
	Format     string   `json:"format"`
}

func (h *mediaHandlers) merge(c *gin.Context) {
	if h.media == nil {
		notConfigured(c, "media processing")
		return
	}
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.VideoPaths) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video_paths is required"})
		return
	}
	if req.Format == "" {
		req.Format = "mp4"
	}

	out, err := h.media.MergeVideos(req.VideoPaths, outputID(req.OutputID), req.Format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"output_path": out})
}

// AddAudioRequest overlays or replaces a video's audio track.
type AddAudioRequest struct {
	VideoPath  string  `json:"video_path" binding:"required"`
	AudioPath  string  `json:"audio_path" binding:"required"`
	OutputID   int64   `json:"output_id"`
	AudioStart float64 `json:"audio_start"`
	VideoStart float64 `json:"video_start"`
	Replace    bool    `json:"replace"`
	Format     string  `json:"format"`
}

func (h *mediaHandlers) addAudio(c *gin.Context) {
	if h.media == nil {
		notConfigured(c, "media processing")
		return
	}
	var req AddAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Format == "" {
		req.Format = "mp4"
	}

	var out string
	var err error
	if req.Replace {
		out, err = h.media.ReplaceAudio(req.VideoPath, req.AudioPath, outputID(req.OutputID), req.Format)
	} else {
		out, err = h.media.MergeAudio(req.VideoPath, req.AudioPath, outputID(req.OutputID), req.AudioStart, req.VideoStart, req.Format)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"output_path": out})
}

// BackgroundMusicRequest mixes a music bed under the original audio.
type BackgroundMusicRequest struct {
	VideoPath      string  `json:"video_path" binding:"required"`
	MusicPath      string  `json:"music_path" binding:"required"`
	OutputID       int64   `json:"output_id"`
	MusicVolume    float64 `json:"music_volume"`
	OriginalVolume float64 `json:"original_volume"`
	Format         string  `json:"format"`
}

func (h *mediaHandlers) backgroundMusic(c *gin.Context) {
	if h.media == nil {
		notConfigured(c, "media processing")
		return
	}
	var req BackgroundMusicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Format == "" {
		req.Format = "mp4"
	}
	if req.MusicVolume <= 0 {
		req.MusicVolume = 0.3
	}
	if req.OriginalVolume <= 0 {
		req.OriginalVolume = 1.0
	}

	out, err := h.media.AddBackgroundMusic(req.VideoPath, req.MusicPath, outputID(req.OutputID), req.MusicVolume, req.OriginalVolume, req.Format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"output_path": out})
}

// ExtractAudioRequest pulls the audio track out of a video.
type ExtractAudioRequest struct {
	VideoPath string `json:"video_path" binding:"required"`
	OutputID  int64  `json:"output_id"`
	Format    string `json:"format"`
}

func (h *mediaHandlers) extractAudio(c *gin.Context) {
	if h.media == nil {
		notConfigured(c, "media processing")
		return
	}
	var req ExtractAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Format == "" {
		req.Format = "mp3"
	}

	out, err := h.media.ExtractAudio(req.VideoPath, outputID(req.OutputID), req.Format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"output_path": out})
}

func (h *mediaHandlers) info(c *gin.Context) {
	if h.media == nil {
		notConfigured(c, "media processing")
		return
	}
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	info, err := h.media.Probe(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}
