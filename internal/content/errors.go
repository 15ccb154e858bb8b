package content

import (
	"errors"
	"fmt"
)

// Sentinel reasons a content file is rejected. All of them are recoverable:
// the file is skipped and reported, never aborting the run.
var (
	ErrBadFrontmatter = errors.New("malformed frontmatter")
	ErrMissingTitle   = errors.New("missing required field: title")
	ErrMissingDate    = errors.New("missing required field: date")
	ErrBadDate        = errors.New("malformed date")
	ErrDuplicateSlug  = errors.New("duplicate slug")
)

// ParseError describes why an individual content file was skipped.
type ParseError struct {
	Path string // source-relative path of the offending file
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Path, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(path string, err error) *ParseError {
	return &ParseError{Path: path, Err: err}
}
