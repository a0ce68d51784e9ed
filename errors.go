package topoprep

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the failures of a dataset preparation run.
type ErrorKind int

// The known error kinds.
const (
	ConfigError          ErrorKind = iota + 1 // Invalid or missing configuration. Fatal.
	AnnotationParseError                      // The annotation file cannot be read or decoded. Fatal.
	MissingSourceError                        // A selected image has no source file. Per item.
	DecodeError                               // A source file is not a decodable image. Per item.
	WriteError                                // An output cannot be written. Fatal for the output dir.
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigError:
		return "config error"
	case AnnotationParseError:
		return "annotation parse error"
	case MissingSourceError:
		return "missing source"
	case DecodeError:
		return "decode error"
	case WriteError:
		return "write error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a classified error. Path names the offending file, directory or flag.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%v: %q: %v", e.Kind, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%v: %q", e.Kind, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Cause returns the underlying error, for errors.Cause.
func (e *Error) Cause() error { return e.Err }

// newError wraps err with the kind and path. A nil err is kept nil inside the Error.
func newError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// configErrorf returns a ConfigError for the named option.
func configErrorf(option, format string, args ...interface{}) *Error {
	return newError(ConfigError, option, errors.Errorf(format, args...))
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		return false
	}
	return false
}
