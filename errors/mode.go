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

package errors

// modeError controls what ers.Error() renders. The tupledb-cli --verbose-errors
// flag raises it for operators debugging a live connection; library code
// never changes it and should not depend on a particular mode being set.
var modeError = Default

// SetModeReturnError changes what Error() returns for every Error value
// already created or yet to be created (the mode is read at format time, not
// capture time).
func SetModeReturnError(mode ErrorMode) {
	modeError = mode
}

// ErrorMode selects how much detail ers.Error() renders.
type ErrorMode uint8

const (
	// Default renders just the message, matching a plain error.
	Default ErrorMode = iota
	// CodeMessage renders "[Error #<code>] <message>".
	CodeMessage
	// CodeMessageTrace additionally appends the call-site trace.
	CodeMessageTrace
)

func (m ErrorMode) String() string {
	switch m {
	case CodeMessage:
		return "CodeMessage"
	case CodeMessageTrace:
		return "CodeMessageTrace"
	default:
		return "Default"
	}
}

func (m ErrorMode) error(e *ers) string {
	switch m {
	case CodeMessage:
		return e.CodeError("")
	case CodeMessageTrace:
		return e.CodeErrorTrace("")
	default:
		return e.StringError()
	}
}
