package prompts

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	cohereoption "github.com/cohere-ai/cohere-go/v2/option"
	readability "github.com/go-shiori/go-readability"

	"reelsmith/config"
	"reelsmith/types"
)

const defaultChatModel = "command-r-plus"

const analyzePreamble = `You are a professional creative content analyst and prompt engineer. Your task is to:

1. Deeply understand the user's input content and intent
2. Generate two specialized prompts:
   - Video generation prompt: for AI video generation models, specifically describe visual scenes, actions, styles, etc.
   - Audio generation prompt: for text-to-speech, should be natural and fluent narrative text

Return results in the following JSON format and nothing else:
{
    "analysis": {
        "main_theme": "Content theme",
        "key_elements": ["Key element 1", "Key element 2"],
        "style_preference": "Style preference",
        "mood": "Emotional atmosphere"
    },
    "video_prompt": "Detailed video generation prompt, including scenes, actions, visual styles, etc.",
    "audio_prompt": "Natural narrative text suitable for speech conversion"
}

Note:
- Video prompts should specifically describe visual elements, avoid abstract concepts
- Audio prompts should be complete sentences suitable for reading aloud
- Both prompts should work together to form a complete content experience`

const refineVideoPreamble = `You are a video generation prompt expert. Based on user feedback, optimize and improve video generation prompts.

Requirements:
1. Maintain the core content of the original prompt
2. Make adjustments based on user feedback
3. Ensure the prompt is specific, clear, and suitable for AI video generation
4. Return only the optimized prompt`

const refineAudioPreamble = `You are an audio generation text expert. Based on user feedback, optimize and improve audio generation text.

Requirements:
1. Maintain the core content of the original text
2. Make adjustments based on user feedback
3. Ensure the text is natural and fluent, suitable for reading aloud
4. Return only the optimized audio text`

// chatter abstracts the chat API so tests can fake it.
type chatter interface {
	Chat(ctx context.Context, request *cohere.ChatRequest, opts ...cohereoption.RequestOption) (*cohere.NonStreamedChatResponse, error)
}

// Analyzer turns raw user input into structured video and audio prompts.
type Analyzer struct {
	client chatter
	model  string
}

// AnalysisResult is the structured output of Analyze.
type AnalysisResult struct {
	Analysis    types.PromptAnalysis `json:"analysis"`
	VideoPrompt string               `json:"video_prompt"`
	AudioPrompt string               `json:"audio_prompt"`
	RawResponse string               `json:"raw_response,omitempty"`
	Warning     string               `json:"warning,omitempty"`
}

// NewAnalyzer builds an Analyzer backed by the Cohere chat API.
// The HTTP client forces HTTP/1.1 to avoid HTTP/2 protocol errors.
func NewAnalyzer(apiKey, model string) (*Analyzer, error) {
	if apiKey == "" {
		return nil, errors.New("prompts: API key is required")
	}
	if model == "" {
		model = defaultChatModel
	}
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &Analyzer{client: client, model: model}, nil
}

// Analyze asks the model to produce structured analysis plus video and audio
// prompts. When the model response is not valid JSON, the raw text is reused
// as both prompts and a warning is set, so callers still get something usable.
func (a *Analyzer) Analyze(ctx context.Context, userInput, userContext, referenceURL string) (*AnalysisResult, error) {
	message := "User input: " + userInput
	if userContext != "" {
		message += "\n\nAdditional context: " + userContext
	}
	if referenceURL != "" {
		if refText, err := FetchReferenceText(referenceURL); err == nil && refText != "" {
			message += "\n\nReference material:\n" + refText
		}
	}

	resp, err := a.client.Chat(ctx, &cohere.ChatRequest{
		Message:  message,
		Model:    cohere.String(a.model),
		Preamble: cohere.String(analyzePreamble),
	})
	if err != nil {
		return nil, fmt.Errorf("prompts: chat request failed: %w", err)
	}

	content := strings.TrimSpace(resp.Text)
	result := parseAnalysis(content)
	result.RawResponse = content
	return result, nil
}

// PromptType selects which refinement preamble to use.
type PromptType string

const (
	VideoPrompt PromptType = "video"
	AudioPrompt PromptType = "audio"
)

// Refine rewrites a prompt according to user feedback.
func (a *Analyzer) Refine(ctx context.Context, promptType PromptType, originalPrompt, userFeedback string) (string, error) {
	var preamble, label string
	switch promptType {
	case VideoPrompt:
		preamble = refineVideoPreamble
		label = "Original prompt"
	case AudioPrompt:
		preamble = refineAudioPreamble
		label = "Original audio text"
	default:
		return "", fmt.Errorf("prompts: unknown prompt type %q", promptType)
	}

	message := fmt.Sprintf("%s: %s\n\nUser feedback: %s\n\nPlease provide the optimized version.",
		label, originalPrompt, userFeedback)

	resp, err := a.client.Chat(ctx, &cohere.ChatRequest{
		Message:  message,
		Model:    cohere.String(a.model),
		Preamble: cohere.String(preamble),
	})
	if err != nil {
		return "", fmt.Errorf("prompts: chat request failed: %w", err)
	}

	refined := strings.TrimSpace(resp.Text)
	if refined == "" {
		return originalPrompt, nil
	}
	return refined, nil
}

// parseAnalysis decodes the model output. It tolerates fenced code blocks and
// falls back to using the raw text as both prompts.
func parseAnalysis(content string) *AnalysisResult {
	candidate := stripFence(content)

	var result AnalysisResult
	if err := json.Unmarshal([]byte(candidate), &result); err == nil && result.VideoPrompt != "" {
		return &result
	}

	return &AnalysisResult{
		Analysis: types.PromptAnalysis{
			MainTheme:       "Parse failed",
			KeyElements:     []string{},
			StylePreference: "Unknown",
			Mood:            "Unknown",
		},
		VideoPrompt: content,
		AudioPrompt: content,
		Warning:     "Response was not in expected JSON format",
	}
}

// stripFence removes a surrounding markdown code fence, if any.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// FetchReferenceText extracts readable text from a web page, truncated so it
// fits in a chat message alongside the user input.
func FetchReferenceText(url string) (string, error) {
	article, err := readability.FromURL(url, 30*time.Second)
	if err != nil {
		return "", fmt.Errorf("prompts: failed to extract %s: %w", url, err)
	}
	return truncateText(strings.TrimSpace(article.TextContent), config.ReferenceTextLimit), nil
}

// truncateText cuts text to at most limit bytes without splitting a rune.
func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
