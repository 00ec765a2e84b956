// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-stack/stack"
	"github.com/ikmak/dbson/internal"
)

// ErrorCode is the stable, machine readable kind of an Error.
type ErrorCode string

// Error codes.
const (
	CodeInvalidType           ErrorCode = "INVALID_TYPE"
	CodeUnknownType           ErrorCode = "UNKNOWN_TYPE"
	CodeCircularReference     ErrorCode = "CIRCULAR_REFERENCE"
	CodeMaxDepthExceeded      ErrorCode = "MAX_DEPTH_EXCEEDED"
	CodeInvalidKey            ErrorCode = "INVALID_KEY"
	CodeMalformed             ErrorCode = "MALFORMED"
	CodeSerializationFailed   ErrorCode = "SERIALIZE_ERROR"
	CodeDeserializationFailed ErrorCode = "DESERIALIZE_ERROR"
)

// Sentinels for use with errors.Is. An *Error matches a sentinel when their
// codes are equal.
var (
	ErrInvalidType           = &Error{Code: CodeInvalidType, Msg: "invalid type"}
	ErrUnknownType           = &Error{Code: CodeUnknownType, Msg: "unknown type"}
	ErrCircularReference     = &Error{Code: CodeCircularReference, Msg: "circular reference"}
	ErrMaxDepthExceeded      = &Error{Code: CodeMaxDepthExceeded, Msg: "max depth exceeded"}
	ErrInvalidKey            = &Error{Code: CodeInvalidKey, Msg: "invalid key"}
	ErrMalformed             = &Error{Code: CodeMalformed, Msg: "malformed input"}
	ErrSerializationFailed   = &Error{Code: CodeSerializationFailed, Msg: "serialization failed"}
	ErrDeserializationFailed = &Error{Code: CodeDeserializationFailed, Msg: "deserialization failed"}
)

// Error is the error returned by Serialize and Deserialize. Path locates the
// offending value in the tree ("" for the root, "a.b[2]" for nested values)
// and Offset is the byte position in the input when decoding, or -1.
type Error struct {
	Code   ErrorCode
	Msg    string
	Path   string
	Offset int
	Err    error
}

var _ internal.WrappedError = (*Error)(nil)

func newError(code ErrorCode, path string, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Path: path, Offset: -1}
}

// wrapFailure wraps err under the given top level code. The location of the
// innermost *Error is copied so callers need not unwrap to find it.
func wrapFailure(code ErrorCode, msg string, err error) *Error {
	out := &Error{Code: code, Msg: msg, Offset: -1, Err: err}
	var inner *Error
	if errors.As(err, &inner) {
		out.Path = inner.Path
		out.Offset = inner.Offset
	}
	return out
}

// Message returns the message of this error without the wrapped error. The
// location is included unless a wrapped *Error already reports it.
func (e *Error) Message() string {
	var inner *Error
	if errors.As(e.Err, &inner) {
		return e.Msg
	}

	msg := e.Msg
	if e.Path != "" {
		msg += " at " + strconv.Quote(e.Path)
	}
	if e.Offset >= 0 {
		msg += " (offset " + strconv.Itoa(e.Offset) + ")"
	}
	return msg
}

// Inner returns the wrapped error.
func (e *Error) Inner() error { return e.Err }

// Error implements the error interface.
func (e *Error) Error() string {
	return string(e.Code) + ": " + internal.RolledUpErrorMessage(e)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ErrTooSmall indicates that the input ended before a value was complete.
type ErrTooSmall struct {
	Stack stack.CallStack
}

// NewErrTooSmall creates a new ErrTooSmall with the current stack.
func NewErrTooSmall() ErrTooSmall {
	return ErrTooSmall{Stack: stack.Trace().TrimRuntime()}
}

// Error implements the error interface.
func (e ErrTooSmall) Error() string {
	return "too small"
}

// ErrorStack returns a string representing the stack at the point where the error occurred.
func (e ErrTooSmall) ErrorStack() string {
	s := bytes.NewBufferString("too small: [")

	for i, call := range e.Stack {
		if i != 0 {
			s.WriteString(", ")
		}

		// go vet rejects %k in a literal format string.
		callFormat := "%k.%n %v"

		s.WriteString(fmt.Sprintf(callFormat, call, call, call))
	}

	s.WriteRune(']')

	return s.String()
}
