package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/chaincheck/internal/errors"
)

// MaxFileSize is the maximum size of a rule set or record file (16MB).
const MaxFileSize = 16 * 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file up to MaxFileSize.
// Missing files are reported as errors.ErrNotFound.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "opening %s", path)
		}
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Fail fast on files already known to be too large
	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	return data, nil
}
