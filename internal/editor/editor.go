// Package editor launches the user's preferred text editor on rule-set and
// configuration files.
package editor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/chaincheck/internal/errors"
)

// Open launches the user's preferred editor for the given path and waits
// for it to exit. The path is announced on w.
// Uses $EDITOR, falling back to $VISUAL, then nano, then vi. Editor values
// may carry arguments, e.g. EDITOR="code --wait".
func Open(w io.Writer, path string) error {
	args := strings.Fields(detectEditor())
	args = append(args, path)

	fmt.Fprintf(w, "Location: %s\n", path)

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return errors.Wrapf(cmd.Run(), "running editor %s", args[0])
}

// detectEditor returns the editor command to use based on environment variables
// and available binaries. Fallback chain: $EDITOR → $VISUAL → nano → vi
func detectEditor() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}

	if visual := strings.TrimSpace(os.Getenv("VISUAL")); visual != "" {
		return visual
	}

	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}

	return "vi"
}
