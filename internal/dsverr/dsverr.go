// Package dsverr defines the error taxonomy shared by every stage of the
// pipeline: parse-time failures, usage mistakes, child-process failures,
// and the cooperative "stop reading" signal used when a downstream
// consumer has gone away.
package dsverr

import (
	"fmt"

	"github.com/pkg/errors"
)

// UpstreamClosed is returned by a Sender when its receiver has gone away.
// It is not a real failure: callers recover it locally, stop reading
// further input, and let Eof propagate downstream as usual.
var UpstreamClosed = errors.New("upstream closed")

// Sentinel parse errors, in the spirit of the teacher's encoding/csv
// compatible sentinels (ErrBareQuote, ErrQuote).
var (
	ErrBareQuote  = errors.New("bare \" in non-quoted field")
	ErrQuote      = errors.New("extraneous or missing \" in quoted field")
	ErrFieldCount = errors.New("wrong number of fields")
)

// ParseError reports a malformed record with its position, matching
// encoding/csv's ParseError shape.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UsageError is a CLI-surface diagnostic: bad field expression, bad
// --jobs, bad --replace-str. It is printed and causes a non-zero exit
// before any streaming begins.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// NewUsageError builds a UsageError with a formatted message.
func NewUsageError(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// ChildProcessError wraps a failure spawning or waiting on a child
// process spawned by ParallelExec or a pipe/sort/sqlite subcommand.
type ChildProcessError struct {
	Argv []string
	Err  error
}

func (e *ChildProcessError) Error() string {
	return fmt.Sprintf("child process %v: %v", e.Argv, e.Err)
}

func (e *ChildProcessError) Unwrap() error { return e.Err }

// IsUpstreamClosed reports whether err is (or wraps) UpstreamClosed.
func IsUpstreamClosed(err error) bool {
	return errors.Is(err, UpstreamClosed)
}

// Wrap annotates err with a message, preserving Is/As compatibility.
// Thin re-export so callers don't need to import pkg/errors directly.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// Wrapf is the formatted variant of Wrap.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
