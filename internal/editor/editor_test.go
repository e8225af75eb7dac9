package editor

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDetectEditor(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		visual string
		want   string
	}{
		{"editor wins", "nvim", "code", "nvim"},
		{"visual fallback", "", "code --wait", "code --wait"},
		{"blank editor treated as unset", "   ", "hx", "hx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EDITOR", tt.editor)
			t.Setenv("VISUAL", tt.visual)

			if got := detectEditor(); got != tt.want {
				t.Errorf("detectEditor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectEditor_Fallback(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	want := "vi"
	if _, err := exec.LookPath("nano"); err == nil {
		want = "nano"
	}
	if got := detectEditor(); got != want {
		t.Errorf("detectEditor() = %q, want %q", got, want)
	}
}

// mockEditor writes a shell script that records its arguments to a file.
func mockEditor(t *testing.T) (script, output string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping on windows (uses shell script mock)")
	}

	dir := t.TempDir()
	script = filepath.Join(dir, "mock-editor.sh")
	output = filepath.Join(dir, "args.txt")
	body := "#!/bin/sh\necho \"$@\" > " + output + "\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}
	return script, output
}

func TestOpen(t *testing.T) {
	script, output := mockEditor(t)
	t.Setenv("EDITOR", script+" --wait")

	target := filepath.Join(t.TempDir(), "signup.yaml")
	if err := os.WriteFile(target, []byte("name: signup\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Open(&buf, target); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if !strings.Contains(buf.String(), "Location: "+target) {
		t.Errorf("Open() output = %q, want location line", buf.String())
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(got)) != "--wait "+target {
		t.Errorf("editor args = %q, want %q", strings.TrimSpace(string(got)), "--wait "+target)
	}
}

func TestOpen_MissingEditor(t *testing.T) {
	t.Setenv("EDITOR", "non-existent-binary-12345")
	t.Setenv("VISUAL", "")

	var buf bytes.Buffer
	err := Open(&buf, "signup.yaml")
	if err == nil {
		t.Fatal("expected error for non-existent editor, got nil")
	}
	if !strings.Contains(err.Error(), "running editor non-existent-binary-12345") {
		t.Errorf("error = %v, want editor name in message", err)
	}
}
