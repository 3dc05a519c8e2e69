package types

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide how to report it.
type Kind int

const (
	KindUnknown Kind = iota
	KindIO
	KindFormat
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindFormat:
		return "format"
	case KindConfiguration:
		return "configuration"
	}
	return "unknown"
}

// ErrMissingInput is returned when any of the four required paths is empty.
var ErrMissingInput = errors.New("Please select template, Side 1, Side 2, and an output file.")

// Error carries a Kind alongside the message shown to the user.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IOError wraps a file system failure.
func IOError(err error, format string, args ...any) *Error {
	return &Error{Kind: KindIO, Msg: fmt.Sprintf(format, args...), Err: err}
}

// FormatError reports malformed numeric input.
func FormatError(format string, args ...any) *Error {
	return &Error{Kind: KindFormat, Msg: fmt.Sprintf(format, args...)}
}

// ConfigError reports a bad sheet name, column or start row.
func ConfigError(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
