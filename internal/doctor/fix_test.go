package doctor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPermissionFixer_CanFix(t *testing.T) {
	tests := []struct {
		name   string
		issues []pathIssue
		want   int
	}{
		{"no issues", nil, 0},
		{"non-fixable issue", []pathIssue{{Path: "/a", Type: "file", Severity: SeverityError}}, 0},
		{"fixable issue", []pathIssue{{Path: "/a", Type: "file", Fixable: true}}, 1},
		{
			name: "mixed issues",
			issues: []pathIssue{
				{Path: "/a", Severity: SeverityError},
				{Path: "/b", Fixable: true},
				{Path: "/c", Fixable: true, Missing: true},
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &PermissionFixer{}
			f.setIssues(tt.issues)
			if got := f.CountFixable(); got != tt.want {
				t.Errorf("CountFixable() = %d, want %d", got, tt.want)
			}
			if got := f.CanFix(); got != (tt.want > 0) {
				t.Errorf("CanFix() = %v, want %v", got, tt.want > 0)
			}
		})
	}
}

func TestPermissionFixer_Fix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Unix permissions")
	}
	tempDir := t.TempDir()

	file := writeFile(t, filepath.Join(tempDir, "config.yaml"), "version: 1\n", 0o666)
	dir := filepath.Join(tempDir, "open")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(dir, 0o777); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(tempDir, "rules", "nested")

	f := &PermissionFixer{}
	f.setIssues([]pathIssue{
		{Path: file, Type: "file", Fixable: true},
		{Path: dir, Type: "directory", Fixable: true},
		{Path: missing, Type: "directory", Missing: true, Fixable: true},
		{Path: "/skipped", Type: "file", Fixable: false},
		{Path: filepath.Join(tempDir, "gone"), Type: "file", Fixable: true},
		{Path: file, Type: "socket", Fixable: true},
	})

	results := f.Fix()
	if len(results) != 5 {
		t.Fatalf("Fix() returned %d results, want 5", len(results))
	}

	want := []struct {
		fixed bool
		desc  string
	}{
		{true, "chmod 0600"},
		{true, "chmod 0755"},
		{true, "created directory"},
		{false, ""},
		{false, "unknown type: socket"},
	}
	for i, w := range want {
		r := results[i]
		if r.Fixed != w.fixed {
			t.Errorf("results[%d].Fixed = %v, want %v (%s)", i, r.Fixed, w.fixed, r.Description)
		}
		if w.desc != "" && r.Description != w.desc {
			t.Errorf("results[%d].Description = %q, want %q", i, r.Description, w.desc)
		}
		if !w.fixed && r.Error == nil {
			t.Errorf("results[%d].Error = nil for a failed fix", i)
		}
	}

	assertPerm := func(path string, want os.FileMode) {
		t.Helper()
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s mode = %04o, want %04o", path, got, want)
		}
	}
	assertPerm(file, 0o600)
	assertPerm(dir, 0o755)
	if info, err := os.Stat(missing); err != nil || !info.IsDir() {
		t.Errorf("missing directory was not created: %v", err)
	}
}

func TestPathPermissionCheck_FixAfterRun(t *testing.T) {
	tempDir := t.TempDir()
	rulesDir := filepath.Join(tempDir, "rules")

	c := NewPathPermissionCheck(filepath.Join(tempDir, "config.yaml"), rulesDir)
	if res := c.Run(); res.Status != SeverityWarning {
		t.Fatalf("Status = %v, want warning for a missing rules directory", res.Status)
	}

	results := c.Fix()
	if len(results) != 1 || !results[0].Fixed {
		t.Fatalf("Fix() = %+v, want rules directory created", results)
	}

	if res := c.Run(); res.Status != SeverityPass {
		t.Errorf("Status after fix = %v, want pass: %s", res.Status, res.Message)
	}
}
