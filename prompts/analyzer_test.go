package prompts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereoption "github.com/cohere-ai/cohere-go/v2/option"
)

type fakeChatter struct {
	text    string
	err     error
	lastReq *cohere.ChatRequest
}

func (f *fakeChatter) Chat(ctx context.Context, req *cohere.ChatRequest, opts ...cohereoption.RequestOption) (*cohere.NonStreamedChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &cohere.NonStreamedChatResponse{Text: f.text}, nil
}

const wellFormed = `{
	"analysis": {
		"main_theme": "ocean adventure",
		"key_elements": ["waves", "sunlight"],
		"style_preference": "cinematic",
		"mood": "uplifting"
	},
	"video_prompt": "A surfer rides a towering wave at golden hour",
	"audio_prompt": "The ocean calls to those who dare to ride it."
}`

func TestAnalyzeParsesJSON(t *testing.T) {
	fc := &fakeChatter{text: wellFormed}
	a := &Analyzer{client: fc, model: "command-r-plus"}

	result, err := a.Analyze(context.Background(), "make a surfing video", "", "")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if result.Analysis.MainTheme != "ocean adventure" {
		t.Errorf("main theme = %q", result.Analysis.MainTheme)
	}
	if len(result.Analysis.KeyElements) != 2 {
		t.Errorf("key elements = %v", result.Analysis.KeyElements)
	}
	if result.VideoPrompt == "" || result.AudioPrompt == "" {
		t.Errorf("prompts missing: %+v", result)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning %q", result.Warning)
	}
}

func TestAnalyzeParsesFencedJSON(t *testing.T) {
	fc := &fakeChatter{text: "```json\n" + wellFormed + "\n```"}
	a := &Analyzer{client: fc, model: "command-r-plus"}

	result, err := a.Analyze(context.Background(), "make a surfing video", "", "")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if result.Analysis.MainTheme != "ocean adventure" {
		t.Errorf("fenced JSON not parsed: %+v", result)
	}
}

func TestAnalyzeFallbackOnInvalidJSON(t *testing.T) {
	fc := &fakeChatter{text: "Here is a lovely video about surfing."}
	a := &Analyzer{client: fc, model: "command-r-plus"}

	result, err := a.Analyze(context.Background(), "make a surfing video", "", "")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if result.Warning == "" {
		t.Error("expected warning for non-JSON response")
	}
	if result.VideoPrompt != fc.text || result.AudioPrompt != fc.text {
		t.Errorf("fallback prompts = %+v", result)
	}
	if result.Analysis.MainTheme != "Parse failed" {
		t.Errorf("fallback analysis = %+v", result.Analysis)
	}
}

func TestAnalyzeIncludesContext(t *testing.T) {
	fc := &fakeChatter{text: wellFormed}
	a := &Analyzer{client: fc, model: "command-r-plus"}

	_, err := a.Analyze(context.Background(), "surfing", "for a sports brand", "")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if !strings.Contains(fc.lastReq.Message, "Additional context: for a sports brand") {
		t.Errorf("context missing from message: %q", fc.lastReq.Message)
	}
}

func TestAnalyzeChatError(t *testing.T) {
	fc := &fakeChatter{err: errors.New("rate limited")}
	a := &Analyzer{client: fc, model: "command-r-plus"}
	if _, err := a.Analyze(context.Background(), "x", "", ""); err == nil {
		t.Fatal("expected error when chat fails")
	}
}

func TestRefine(t *testing.T) {
	fc := &fakeChatter{text: "A surfer rides a colossal wave under storm clouds"}
	a := &Analyzer{client: fc, model: "command-r-plus"}

	refined, err := a.Refine(context.Background(), VideoPrompt, "surfer on a wave", "make it more dramatic")
	if err != nil {
		t.Fatalf("Refine error: %v", err)
	}
	if refined != fc.text {
		t.Errorf("refined = %q", refined)
	}
	if !strings.Contains(fc.lastReq.Message, "make it more dramatic") {
		t.Errorf("feedback missing from message: %q", fc.lastReq.Message)
	}
}

func TestRefineUnknownType(t *testing.T) {
	a := &Analyzer{client: &fakeChatter{}, model: "command-r-plus"}
	if _, err := a.Refine(context.Background(), "image", "p", "f"); err == nil {
		t.Fatal("expected error for unknown prompt type")
	}
}

func TestRefineEmptyResponseKeepsOriginal(t *testing.T) {
	a := &Analyzer{client: &fakeChatter{text: "  "}, model: "command-r-plus"}
	refined, err := a.Refine(context.Background(), AudioPrompt, "the original narration", "shorter")
	if err != nil {
		t.Fatalf("Refine error: %v", err)
	}
	if refined != "the original narration" {
		t.Errorf("refined = %q; want original kept", refined)
	}
}

func TestTruncateTextKeepsRunesIntact(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"under limit", "short", 10, "short"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"multibyte boundary", "abécd", 4, "abé"},
		{"mid rune", "abécd", 3, "ab"},
		{"cjk mid rune", "海洋", 4, "海"},
	}
	for _, tt := range tests {
		got := truncateText(tt.in, tt.limit)
		if got != tt.want {
			t.Errorf("%s: truncateText(%q, %d) = %q; want %q", tt.name, tt.in, tt.limit, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("%s: result %q is not valid UTF-8", tt.name, got)
		}
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFence(tt.in); got != tt.want {
			t.Errorf("stripFence(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
