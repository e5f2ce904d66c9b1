/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package errors gives every tupledb package a shared error code space instead
// of ad hoc sentinel values: a numeric CodeError per failure class, an optional
// parent chain, and stack-frame capture at the point the error was built.
//
// Each package that defines error codes reserves a block via one of the
// MinPkg* offsets in modules.go, registers its message function once in an
// init(), and wraps failures with NewErrorTrace or a CodeError's own Error
// method. Callers test codes with IsCode rather than string matching.
//
// Sub-packages:
//   - pool: thread-safe error collection with automatic indexing, used by the
//     CLI's batch-load command to gather per-item failures.
package errors

import (
	"errors"
	"math"
	"runtime"
)

// Error extends the standard error with a numeric code, a parent chain, and
// the call site where it was created.
type Error interface {
	error

	// IsCode reports whether the error's own code equals code, ignoring parents.
	IsCode(code CodeError) bool
	// HasCode reports whether the error or any parent has code.
	HasCode(code CodeError) bool
	// GetCode returns the error's own code.
	GetCode() CodeError

	// Is implements compatibility with the standard errors.Is.
	Is(e error) bool
	// IsError reports whether e has the same message as this error.
	IsError(e error) bool
	// HasError reports whether e's message matches this error or any parent.
	HasError(err error) bool
	// HasParent reports whether the error carries at least one parent.
	HasParent() bool

	// Add appends non-nil errors as parents of this error.
	Add(parent ...error)

	// Code returns the numeric code as a plain uint16.
	Code() uint16
	// CodeError formats the code and message using pattern (or a default
	// pattern if empty): two verbs, code then message.
	CodeError(pattern string) string
	// CodeErrorTrace formats the code, message, and call-site trace using
	// pattern (or a default pattern if empty): three verbs, code, message,
	// trace.
	CodeErrorTrace(pattern string) string

	// Unwrap exposes parents for errors.Is/errors.As.
	Unwrap() []error

	// GetTrace returns "file#line" (or "function#line" if the file is
	// unknown) for the call site where the error was created.
	GetTrace() string
}

// IsCode reports whether e is an Error with the given code.
func IsCode(e error, code CodeError) bool {
	if err := get(e); err == nil {
		return false
	} else {
		return err.IsCode(code)
	}
}

func get(e error) Error {
	var err Error
	if errors.As(e, &err) {
		return err
	}

	return nil
}

// wrapParent converts a plain error into an Error with code 0, or returns it
// unchanged if it already is one. Used to normalize parents passed to New and
// NewErrorTrace.
func wrapParent(e error) Error {
	var err Error

	if e == nil {
		return nil
	} else if errors.As(e, &err) {
		return err
	}

	return &ers{
		c: 0,
		e: e.Error(),
		p: nil,
		t: getNilFrame(),
	}
}

// New creates an Error with the given code, message, and parents, with the
// call site captured from the caller's frame.
func New(code uint16, message string, parent ...error) Error {
	var p = make([]Error, 0)

	for _, e := range parent {
		if er := wrapParent(e); er != nil {
			p = append(p, er)
		}
	}

	return &ers{
		c: code,
		e: message,
		p: p,
		t: getFrame(),
	}
}

// NewErrorTrace creates an Error with an explicit call site (file, line)
// instead of one captured from runtime.Callers. Transport, schema and config
// call it with an empty file and line 0, so the errors they build carry a
// code, message and parents but no call-site trace.
func NewErrorTrace(code int, msg string, file string, line int, parent ...error) Error {
	var p = make([]Error, 0)

	for _, e := range parent {
		if er := wrapParent(e); er != nil {
			p = append(p, er)
		}
	}

	var i uint16
	if code < 0 {
		i = 0
	} else if code > math.MaxUint16 {
		i = math.MaxUint16
	} else {
		i = uint16(code)
	}

	return &ers{
		c: i,
		e: msg,
		p: p,
		t: runtime.Frame{
			File: file,
			Line: line,
		},
	}
}
