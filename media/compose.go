package media

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"reelsmith/config"
)

// Composer runs FFmpeg pipelines for merging, mixing, and probing media files.
type Composer struct{}

// NewComposer creates a Composer and ensures the staging directories exist.
func NewComposer() (*Composer, error) {
	if err := config.EnsureTempDirs(); err != nil {
		return nil, fmt.Errorf("failed to create staging directories: %w", err)
	}
	return &Composer{}, nil
}

// MergeVideos concatenates the given clips into one output video.
func (c *Composer) MergeVideos(videoPaths []string, outputVideoID int64, format string) (string, error) {
	if len(videoPaths) == 0 {
		return "", fmt.Errorf("no videos to merge")
	}
	for _, p := range videoPaths {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("video file not found: %s", p)
		}
	}

	outputPath := config.ProcessedVideoPath(outputVideoID, format)

	if len(videoPaths) == 1 {
		err := ffmpeg.Input(videoPaths[0]).
			Output(outputPath, ffmpeg.KwArgs{"c": "copy"}).
			OverWriteOutput().
			Run()
		if err != nil {
			return "", fmt.Errorf("ffmpeg failed: %w", err)
		}
		return outputPath, nil
	}

	var streams []*ffmpeg.Stream
	for _, p := range videoPaths {
		in := ffmpeg.Input(p)
		streams = append(streams, in.Video(), in.Audio())
	}

	err := ffmpeg.Concat(streams, ffmpeg.KwArgs{"v": 1, "a": 1}).
		Output(outputPath, ffmpeg.KwArgs{
			"vcodec": "libx264",
			"acodec": "aac",
			"b:v":    "1000k",
			"b:a":    "128k",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}
	return outputPath, nil
}

// MergeAudio overlays an audio file onto a video, keeping both streams and
// ending at the shortest input. Start offsets trim the respective inputs.
func (c *Composer) MergeAudio(videoPath, audioPath string, outputVideoID int64, audioStart, videoStart float64, format string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video file not found: %s", videoPath)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("audio file not found: %s", audioPath)
	}

	outputPath := config.ProcessedVideoPath(outputVideoID, format)

	videoIn := ffmpeg.Input(videoPath, ffmpeg.KwArgs{"ss": videoStart})
	audioIn := ffmpeg.Input(audioPath, ffmpeg.KwArgs{"ss": audioStart})

	err := ffmpeg.Output([]*ffmpeg.Stream{videoIn, audioIn}, outputPath, ffmpeg.KwArgs{
		"vcodec":   "libx264",
		"acodec":   "aac",
		"b:v":      "1000k",
		"b:a":      "128k",
		"shortest": "",
	}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}
	return outputPath, nil
}

// ReplaceAudio swaps the video's audio track for the given audio file.
func (c *Composer) ReplaceAudio(videoPath, audioPath string, outputVideoID int64, format string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video file not found: %s", videoPath)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("audio file not found: %s", audioPath)
	}

	outputPath := config.ProcessedVideoPath(outputVideoID, format)

	videoIn := ffmpeg.Input(videoPath)
	audioIn := ffmpeg.Input(audioPath)

	err := ffmpeg.Output([]*ffmpeg.Stream{videoIn.Video(), audioIn.Audio()}, outputPath, ffmpeg.KwArgs{
		"vcodec":   "libx264",
		"acodec":   "aac",
		"b:v":      "1000k",
		"b:a":      "128k",
		"shortest": "",
	}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}
	return outputPath, nil
}

// AddBackgroundMusic mixes background music under the original audio.
// Volumes are 0.0-1.0 weights for the amix filter.
func (c *Composer) AddBackgroundMusic(videoPath, musicPath string, outputVideoID int64, musicVolume, originalVolume float64, format string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video file not found: %s", videoPath)
	}
	if _, err := os.Stat(musicPath); err != nil {
		return "", fmt.Errorf("music file not found: %s", musicPath)
	}

	outputPath := config.ProcessedVideoPath(outputVideoID, format)

	videoIn := ffmpeg.Input(videoPath)
	musicIn := ffmpeg.Input(musicPath)

	mixed := ffmpeg.Filter(
		[]*ffmpeg.Stream{videoIn.Audio(), musicIn.Audio()},
		"amix",
		ffmpeg.Args{},
		ffmpeg.KwArgs{
			"inputs":   2,
			"duration": "first",
			"weights":  mixWeights(originalVolume, musicVolume),
		},
	)

	err := ffmpeg.Output([]*ffmpeg.Stream{videoIn.Video(), mixed}, outputPath, ffmpeg.KwArgs{
		"vcodec": "libx264",
		"acodec": "aac",
		"b:v":    "1000k",
		"b:a":    "128k",
	}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}
	return outputPath, nil
}

// ExtractAudio pulls the audio track out of a video into its own file.
func (c *Composer) ExtractAudio(videoPath string, outputAudioID int64, audioFormat string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video file not found: %s", videoPath)
	}

	outputPath := config.AudioFilePath(outputAudioID, audioFormat)

	err := ffmpeg.Input(videoPath).Audio().
		Output(outputPath, ffmpeg.KwArgs{
			"acodec": audioCodecFor(audioFormat),
			"b:a":    "128k",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}
	return outputPath, nil
}

// Info holds the probe summary for a media file.
type Info struct {
	Duration float64 `json:"duration"`
	Size     int64   `json:"size"`
	Format   string  `json:"format"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	HasAudio bool    `json:"has_audio"`
}

// Probe inspects a media file with ffprobe.
func (c *Composer) Probe(path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(raw)
}

func parseProbe(raw string) (*Info, error) {
	var probe struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration   string `json:"duration"`
			Size       string `json:"size"`
			FormatName string `json:"format_name"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse probe output: %w", err)
	}

	info := &Info{Format: probe.Format.FormatName}
	info.Duration, _ = strconv.ParseFloat(probe.Format.Duration, 64)
	info.Size, _ = strconv.ParseInt(probe.Format.Size, 10, 64)
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			info.Width = s.Width
			info.Height = s.Height
		case "audio":
			info.HasAudio = true
		}
	}
	return info, nil
}

func audioCodecFor(format string) string {
	if strings.ToLower(format) == "mp3" {
		return "libmp3lame"
	}
	return "aac"
}

func mixWeights(original, music float64) string {
	return fmt.Sprintf("%g %g", original, music)
}
