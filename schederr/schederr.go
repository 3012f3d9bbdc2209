// Copyright © 2026 printsched contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package schederr classifies every error the scheduler returns to a client
// into the taxonomy of spec §7, so the dispatcher can map it onto a response
// status without string-sniffing.
package schederr

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/inkwell/printsched/common"
)

// Error pairs a common.ErrorKind with a message and an optional wrapped
// cause. It implements error and supports errors.Cause via its Cause
// method (and errors.Is/As via Unwrap), so callers upstream can still ask "what broke" while the
// dispatcher only cares "what kind".
type Error struct {
	Kind  common.ErrorKind
	cause error
	msg   string
}

func New(kind common.ErrorKind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func Newf(kind common.ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and msg to cause, preserving cause in the chain so
// errors.Cause(err) still reaches the original error.
func Wrap(cause error, kind common.ErrorKind, msg string) *Error {
	return &Error{Kind: kind, cause: errors.Wrap(cause, msg), msg: msg}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.msg
}

// Unwrap lets the standard errors.Is / errors.As see through to the wrapped
// cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause lets pkg/errors.Cause see through to the wrapped cause.
func (e *Error) Cause() error {
	return e.cause
}

// KindOf extracts the common.ErrorKind from err, walking wrapped causes.
// An err with no *Error in its chain classifies as ErrorKind.Internal,
// since it means a package forgot to classify an error it returned.
func KindOf(err error) common.ErrorKind {
	if err == nil {
		return common.EErrorKind.None()
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return common.EErrorKind.Internal()
}

func BadRequest(msg string) *Error   { return New(common.EErrorKind.BadRequest(), msg) }
func Forbidden(msg string) *Error    { return New(common.EErrorKind.Forbidden(), msg) }
func Unauthorized(msg string) *Error { return New(common.EErrorKind.Unauthorized(), msg) }
func NotFound(msg string) *Error     { return New(common.EErrorKind.NotFound(), msg) }
func NotAccepting(msg string) *Error { return New(common.EErrorKind.NotAccepting(), msg) }
func NotPossible(msg string) *Error  { return New(common.EErrorKind.NotPossible(), msg) }
func Internal(msg string) *Error     { return New(common.EErrorKind.Internal(), msg) }

func AttributesOrValuesNotSupported(msg string) *Error {
	return New(common.EErrorKind.AttributesOrValuesNotSupported(), msg)
}

func DocumentFormatNotSupported(msg string) *Error {
	return New(common.EErrorKind.DocumentFormatNotSupported(), msg)
}
