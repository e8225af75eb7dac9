package doctor

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/thoreinstein/chaincheck/internal/ruleset"
	"github.com/thoreinstein/chaincheck/internal/validator"
)

// PathPermissionCheck validates the config file and the rules directory.
type PathPermissionCheck struct {
	PermissionFixer

	configPath string
	rulesDir   string
}

var (
	_ Check = (*PathPermissionCheck)(nil)
	_ Fixer = (*PathPermissionCheck)(nil)
)

// NewPathPermissionCheck creates a path check for the given config file and
// rules directory.
func NewPathPermissionCheck(configPath, rulesDir string) *PathPermissionCheck {
	return &PathPermissionCheck{
		configPath: configPath,
		rulesDir:   rulesDir,
	}
}

// Name returns the unique identifier for this check.
func (c *PathPermissionCheck) Name() string {
	return "path-permissions"
}

// Category returns the grouping for this check.
func (c *PathPermissionCheck) Category() string {
	return "filesystem"
}

// Run executes the path and permission diagnostic check.
func (c *PathPermissionCheck) Run() *CheckResult {
	var issues []pathIssue
	issues = append(issues, c.checkFile(c.configPath)...)
	issues = append(issues, c.checkDirectory(c.rulesDir)...)

	c.setIssues(issues)
	return c.buildResult(issues, 2)
}

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Type        string // "file" or "directory"
	Problem     string
	Severity    Severity
	Permissions string // octal representation if available
	Missing     bool
	Fixable     bool
	FixHint     string
}

// checkFile validates the config file. A missing file is fine: defaults apply.
func (c *PathPermissionCheck) checkFile(path string) []pathIssue {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return []pathIssue{{
			Path:     path,
			Type:     "file",
			Problem:  fmt.Sprintf("cannot stat file: %v", err),
			Severity: SeverityError,
		}}
	}

	f, err := os.Open(path)
	if err != nil {
		return []pathIssue{{
			Path:        path,
			Type:        "file",
			Problem:     "file is not readable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod 600 " + path,
		}}
	}
	f.Close()

	// Unix permissions don't apply on Windows
	if runtime.GOOS == "windows" {
		return nil
	}
	if info.Mode().Perm()&0o022 != 0 {
		return []pathIssue{{
			Path:        path,
			Type:        "file",
			Problem:     "file is writable by other users",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     "chmod 600 " + path,
		}}
	}
	return nil
}

// checkDirectory validates the rules directory.
func (c *PathPermissionCheck) checkDirectory(path string) []pathIssue {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return []pathIssue{{
			Path:     path,
			Type:     "directory",
			Problem:  "rules directory does not exist",
			Severity: SeverityWarning,
			Missing:  true,
			Fixable:  true,
			FixHint:  "Run: chaincheck init",
		}}
	}
	if err != nil {
		return []pathIssue{{
			Path:     path,
			Type:     "directory",
			Problem:  fmt.Sprintf("cannot stat directory: %v", err),
			Severity: SeverityError,
		}}
	}

	if !info.IsDir() {
		return []pathIssue{{
			Path:     path,
			Type:     "directory",
			Problem:  "expected directory but found file",
			Severity: SeverityError,
		}}
	}

	var issues []pathIssue
	if !c.isDirectoryWritable(path) {
		issues = append(issues, pathIssue{
			Path:        path,
			Type:        "directory",
			Problem:     "directory is not writable",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + path,
		})
	}

	if runtime.GOOS != "windows" && info.Mode().Perm()&0o002 != 0 {
		issues = append(issues, pathIssue{
			Path:        path,
			Type:        "directory",
			Problem:     "directory is world-writable (security risk)",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     "chmod 755 " + path,
		})
	}

	return issues
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func (c *PathPermissionCheck) isDirectoryWritable(path string) bool {
	tmpFile, err := os.CreateTemp(path, ".chaincheck-doctor-*")
	if err != nil {
		return false
	}

	tmpPath := tmpFile.Name()
	tmpFile.Close()
	os.Remove(tmpPath)

	return true
}

// buildResult constructs the final CheckResult from accumulated issues.
func (c *PathPermissionCheck) buildResult(issues []pathIssue, checked int) *CheckResult {
	if len(issues) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("all %d paths have valid permissions", checked),
		}
	}

	highestSeverity := SeverityPass
	for _, issue := range issues {
		highestSeverity = max(highestSeverity, issue.Severity)
	}

	issueDetails := make([]map[string]any, 0, len(issues))
	fixable := false
	var fixHints []string
	for _, issue := range issues {
		issueMap := map[string]any{
			"path":     issue.Path,
			"type":     issue.Type,
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			issueMap["permissions"] = issue.Permissions
		}
		if issue.FixHint != "" {
			issueMap["fix_hint"] = issue.FixHint
			fixHints = append(fixHints, issue.FixHint)
		}
		issueDetails = append(issueDetails, issueMap)
		fixable = fixable || issue.Fixable
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   highestSeverity,
		Message:  fmt.Sprintf("found %d path issue(s) across %d paths", len(issues), checked),
		Details: map[string]any{
			"checked_paths": checked,
			"issue_count":   len(issues),
			"issues":        issueDetails,
		},
		Fixable: fixable,
	}
	if len(fixHints) > 0 {
		result.FixHint = strings.Join(fixHints, "; ")
	}
	return result
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

// ConfigCheck reports whether the configuration loaded at startup is usable.
type ConfigCheck struct {
	path    string
	loadErr error
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck creates a config check for path. loadErr is the error, if
// any, returned when the configuration was loaded.
func NewConfigCheck(path string, loadErr error) *ConfigCheck {
	return &ConfigCheck{path: path, loadErr: loadErr}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config"
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run reports a missing config file as info and a load failure as an error.
func (c *ConfigCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.path},
	}

	switch _, statErr := os.Stat(c.path); {
	case c.loadErr != nil:
		result.Status = SeverityError
		result.Message = c.loadErr.Error()
		result.FixHint = "Run: chaincheck config edit"
	case os.IsNotExist(statErr):
		result.Status = SeverityInfo
		result.Message = "no config file; using defaults"
		result.FixHint = "Run: chaincheck init"
	default:
		result.Status = SeverityPass
		result.Message = "config file is valid"
	}
	return result
}

// RuleSetCheck lints every rule set in the rules directory.
type RuleSetCheck struct {
	dir string
}

var _ Check = (*RuleSetCheck)(nil)

// NewRuleSetCheck creates a rule-set check for dir.
func NewRuleSetCheck(dir string) *RuleSetCheck {
	return &RuleSetCheck{dir: dir}
}

// Name returns the unique identifier for this check.
func (c *RuleSetCheck) Name() string {
	return "rule-sets"
}

// Category returns the grouping for this check.
func (c *RuleSetCheck) Category() string {
	return "rules"
}

// ruleSetFileResult represents the lint result for a single file.
type ruleSetFileResult struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Run loads and lints each rule set. Any lint error fails the check; lint
// warnings downgrade it to a warning.
func (c *RuleSetCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Details:  map[string]any{"dir": c.dir},
	}

	entries, err := ruleset.Discover(c.dir)
	if err != nil {
		result.Status = SeverityError
		result.Message = err.Error()
		return result
	}
	if len(entries) == 0 {
		result.Status = SeverityInfo
		result.Message = "no rule sets found"
		result.FixHint = "Run: chaincheck init"
		return result
	}

	var files []ruleSetFileResult
	var errorCount, warningCount int
	for _, e := range entries {
		file := c.lint(e)
		switch file.Status {
		case SeverityError.String():
			errorCount++
		case SeverityWarning.String():
			warningCount++
		}
		files = append(files, file)
	}
	result.Details["files"] = files

	switch {
	case errorCount > 0:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d of %d rule set(s) have errors", errorCount, len(entries))
		result.FixHint = "Run: chaincheck rules lint " + c.dir + string(os.PathSeparator) + "<file>"
	case warningCount > 0:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d of %d rule set(s) have warnings", warningCount, len(entries))
	default:
		result.Message = fmt.Sprintf("all %d rule set(s) are valid", len(entries))
	}
	return result
}

func (c *RuleSetCheck) lint(e ruleset.Entry) ruleSetFileResult {
	file := ruleSetFileResult{Path: e.Path, Status: SeverityPass.String()}
	if e.Err != nil {
		file.Status = SeverityError.String()
		file.Message = e.Err.Error()
		return file
	}

	rs, err := ruleset.Load(e.Path)
	if err != nil {
		file.Status = SeverityError.String()
		file.Message = err.Error()
		return file
	}

	res := validator.Lint(rs)
	switch {
	case res.HasErrors():
		file.Status = SeverityError.String()
		file.Message = res.Errors()[0].Error()
	case res.HasWarnings():
		file.Status = SeverityWarning.String()
		file.Message = res.Warnings()[0].Error()
	}
	return file
}
