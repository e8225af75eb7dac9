// Package errors provides error handling conventions for the chaincheck CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions. Wrapping helpers are re-exported from
// github.com/cockroachdb/errors.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, errors.ErrUnsupportedFormat) {
//	    // handle unknown file extension
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): every record passed
//   - ExitUser (1): a record failed validation, or invalid input/configuration
//   - ExitSystem (2): I/O or other system failure
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	err := errors.NewUserError(errors.ErrInvalidConfig, "Check your config file")
//	os.Exit(errors.ExitCode(err))
package errors
