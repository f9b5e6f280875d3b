package storage

import (
	"strings"
	"testing"

	"reelsmith/config"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"mp4 ok", "clip.mp4", 1024, false},
		{"png ok", "frame.PNG", 1024, false},
		{"no extension", "README", 10, true},
		{"exe rejected", "setup.exe", 10, true},
		{"too large", "big.mp4", config.MaxFileSize + 1, true},
		{"at limit", "edge.mp4", config.MaxFileSize, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateUpload(%q, %d) error = %v; wantErr %v", tt.filename, tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestObjectKeyUserScoped(t *testing.T) {
	key := ObjectKey(42, "my clip (final).mp4")
	if !strings.HasPrefix(key, "user_42/") {
		t.Fatalf("key %q not scoped to user_42/", key)
	}
	if !strings.HasSuffix(key, ".mp4") {
		t.Fatalf("key %q lost its extension", key)
	}
	if strings.ContainsAny(key, " ()") {
		t.Fatalf("key %q contains unsafe characters", key)
	}
}

func TestObjectKeyPublic(t *testing.T) {
	key := ObjectKey(0, "banner.png")
	if !strings.HasPrefix(key, "public/") {
		t.Fatalf("key %q not scoped to public/", key)
	}
}

func TestObjectKeyUnique(t *testing.T) {
	a := ObjectKey(1, "same.mp4")
	b := ObjectKey(1, "same.mp4")
	if a == b {
		t.Fatalf("two keys for the same input collided: %q", a)
	}
}

func TestSanitizeStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello-world", "hello-world"},
		{"weird/..\\name", "weird____name"},
		{"", "file"},
	}
	for _, tt := range tests {
		if got := sanitizeStem(tt.in); got != tt.want {
			t.Errorf("sanitizeStem(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
