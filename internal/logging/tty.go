package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w is a terminal. Writers without a file
// descriptor, such as buffers and cobra's captured output, never are.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether log lines written to w should carry ANSI
// colors.
func SupportsColor(w io.Writer) bool {
	return colorEnabled(IsTTY(w), os.LookupEnv)
}

// colorEnabled applies the environment overrides to the terminal check.
// NO_COLOR (https://no-color.org) and TERM=dumb turn colors off.
// CLICOLOR_FORCE turns them on for pipes so CI logs stay colored.
func colorEnabled(isTTY bool, lookup func(string) (string, bool)) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if t, _ := lookup("TERM"); t == "dumb" {
		return false
	}
	if v, ok := lookup("CLICOLOR_FORCE"); ok && v != "" && v != "0" {
		return true
	}
	return isTTY
}
