// Package lvrerr defines the closed error taxonomy used across the ingestion
// pipeline: Config, Database, Processing, IO, Serialization, Other.
package lvrerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for logging and exit-code decisions.
type Kind int

const (
	Other Kind = iota
	Config
	Database
	Processing
	IO
	Serialization
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "Config"
	case Database:
		return "Database"
	case Processing:
		return "Processing"
	case IO:
		return "IO"
	case Serialization:
		return "Serialization"
	default:
		return "Other"
	}
}

// Error wraps an underlying cause with a taxonomy Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ConfigError, DatabaseError, ProcessingError, IOError, SerializationError
// and OtherError each build a taxonomy-tagged error from a format string;
// callers interpolate any underlying cause with %v or %w themselves, the
// same way the rest of the codebase builds errors with fmt.Errorf.
func ConfigError(format string, args ...any) *Error       { return newf(Config, format, args...) }
func DatabaseError(format string, args ...any) *Error     { return newf(Database, format, args...) }
func ProcessingError(format string, args ...any) *Error   { return newf(Processing, format, args...) }
func IOError(format string, args ...any) *Error           { return newf(IO, format, args...) }
func SerializationError(format string, args ...any) *Error {
	return newf(Serialization, format, args...)
}
func OtherError(format string, args ...any) *Error { return newf(Other, format, args...) }

// KindOf extracts the Kind of err if it (or something it wraps) is an *Error,
// defaulting to Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}
