package lutgen

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	KindExternal ErrorKind = "external_process"
	KindImageIO  ErrorKind = "image_io"
	KindArgument ErrorKind = "invalid_argument"
)

// OpError wraps an underlying error with the pipeline step and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is an *OpError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

func argError(op, format string, args ...any) error {
	return &OpError{Op: op, Kind: KindArgument, Err: fmt.Errorf(format, args...)}
}

func ioError(op, path string, err error) error {
	return &OpError{Op: op, Kind: KindImageIO, Path: path, Err: err}
}
