package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"

	"reelsmith/config"
	"reelsmith/store"
	"reelsmith/types"
)

// Service synthesizes speech with Google Cloud Text-to-Speech and tracks
// requests in the store.
type Service struct {
	tts   *texttospeech.Service
	store *store.Store
}

// NewService builds a TTS service. Credentials come from a service account
// JSON file when path is non-empty, otherwise the default credential chain.
func NewService(ctx context.Context, serviceAccountFile string, st *store.Store) (*Service, error) {
	var opts []option.ClientOption
	if serviceAccountFile != "" {
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account file: %w", err)
		}
		cfg, err := google.JWTConfigFromJSON(data, texttospeech.CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(cfg.Client(ctx)))
	}

	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create text-to-speech service: %w", err)
	}
	return &Service{tts: svc, store: st}, nil
}

// audioEncoding maps the stored format label to an API encoding.
func audioEncoding(format string) string {
	switch strings.ToUpper(format) {
	case "WAV":
		return "LINEAR16"
	case "OGG":
		return "OGG_OPUS"
	default:
		return "MP3"
	}
}

// Synthesize converts text to audio bytes.
func (s *Service) Synthesize(text, voiceName, languageCode, format string) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: languageCode,
			Name:         voiceName,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: audioEncoding(format),
		},
	}

	resp, err := s.tts.Text.Synthesize(req).Do()
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}
	return audio, nil
}

// Voice describes an available synthesis voice.
type Voice struct {
	Name          string   `json:"name"`
	LanguageCodes []string `json:"language_codes"`
	SsmlGender    string   `json:"ssml_gender"`
}

// ListVoices returns the available voices, optionally filtered by language code.
func (s *Service) ListVoices(languageCode string) ([]Voice, error) {
	call := s.tts.Voices.List()
	if languageCode != "" {
		call = call.LanguageCode(languageCode)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}

	voices := make([]Voice, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		voices = append(voices, Voice{
			Name:          v.Name,
			LanguageCodes: v.LanguageCodes,
			SsmlGender:    v.SsmlGender,
		})
	}
	return voices, nil
}

// ProcessRequest runs the full TTS lifecycle: create the row, synthesize,
// write the file, and record the outcome. Failures are persisted on the row.
func (s *Service) ProcessRequest(ctx context.Context, req *types.Audio) (*types.Audio, error) {
	rec, err := s.store.CreateAudio(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio record: %w", err)
	}

	processing := types.AudioProcessing
	if _, err := s.store.UpdateAudio(ctx, rec.ID, store.AudioUpdate{Status: &processing}); err != nil {
		return nil, err
	}

	audio, err := s.Synthesize(rec.TextInput, rec.VoiceName, rec.LanguageCode, rec.AudioFormat)
	if err != nil {
		s.markFailed(ctx, rec.ID)
		return nil, err
	}

	path := config.AudioFilePath(rec.ID, rec.AudioFormat)
	if err := writeAudioFile(path, audio); err != nil {
		s.markFailed(ctx, rec.ID)
		return nil, err
	}

	completed := types.AudioCompleted
	size := int64(len(audio))
	updated, err := s.store.UpdateAudio(ctx, rec.ID, store.AudioUpdate{
		Status:   &completed,
		FilePath: &path,
		FileSize: &size,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("tts: audio %d synthesized (%d bytes, %s)", rec.ID, size, rec.VoiceName)
	return updated, nil
}

func (s *Service) markFailed(ctx context.Context, id int64) {
	failed := types.AudioFailed
	if _, err := s.store.UpdateAudio(ctx, id, store.AudioUpdate{Status: &failed}); err != nil {
		log.Printf("tts: failed to mark audio %d as failed: %v", id, err)
	}
}

func writeAudioFile(path string, audio []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, audio, 0o644)
}
