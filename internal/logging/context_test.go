package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})

	ctx := NewContext(t.Context(), logger)
	FromContext(ctx).Info("from context")

	if !strings.Contains(buf.String(), "from context") {
		t.Errorf("expected message via context logger, got: %q", buf.String())
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("FromContext() without logger should return slog.Default()")
	}
	//nolint:staticcheck // nil context is tolerated
	if got := FromContext(nil); got != slog.Default() {
		t.Error("FromContext(nil) should return slog.Default()")
	}
}

func TestShouldMask(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"Password_Confirm", true},
		{"API_KEY", true},
		{"refresh_token", true},
		{"email", false},
		{"field", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := ShouldMask(tt.key); got != tt.want {
				t.Errorf("ShouldMask(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestMaskValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "abc", "****"},
		{"four characters", "abcd", "****"},
		{"long", "abcdefgh", "****efgh"},
		{"multibyte tail", "пароль-ключ", "****ключ"},
		{"short multibyte", "ключ", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskValue(tt.in)
			if got != tt.want {
				t.Errorf("MaskValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("MaskValue(%q) = %q is not valid UTF-8", tt.in, got)
			}
		})
	}
}
