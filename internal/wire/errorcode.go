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

package wire

import "fmt"

// ErrFlag is set on a response code's high bit to mark it as an error.
const ErrFlag uint32 = 0x8000

// ErrClassMask isolates the error class from the response code.
const ErrClassMask uint32 = 0x7fff

// Symbolic error classes. The numbering and names are part of the server's
// wire contract and MUST NOT be renumbered; client retry logic keys on
// ErrWrongSchemaVersion specifically.
const (
	ErrUnknown            uint32 = 0
	ErrNoSuchSpace        uint32 = 1
	ErrNoSuchIndex        uint32 = 2
	ErrTupleFound         uint32 = 3
	ErrTupleNotFound      uint32 = 4
	ErrWrongSchemaVersion uint32 = 5
	ErrKeyPartCount       uint32 = 6
	ErrSpaceExists        uint32 = 7
	ErrIndexExists        uint32 = 8
	ErrFieldType          uint32 = 9
	ErrWrongIndexRecord   uint32 = 10
	ErrProc               uint32 = 11
	ErrAccessDenied       uint32 = 12
	ErrAuthFailed         uint32 = 13
	ErrUnsupported        uint32 = 14
)

var errClassName = map[uint32]string{
	ErrUnknown:            "ER_UNKNOWN",
	ErrNoSuchSpace:        "ER_NO_SUCH_SPACE",
	ErrNoSuchIndex:        "ER_NO_SUCH_INDEX",
	ErrTupleFound:         "ER_TUPLE_FOUND",
	ErrTupleNotFound:      "ER_TUPLE_NOT_FOUND",
	ErrWrongSchemaVersion: "ER_WRONG_SCHEMA_VERSION",
	ErrKeyPartCount:       "ER_KEY_PART_COUNT",
	ErrSpaceExists:        "ER_SPACE_EXISTS",
	ErrIndexExists:        "ER_INDEX_EXISTS",
	ErrFieldType:          "ER_FIELD_TYPE",
	ErrWrongIndexRecord:   "ER_WRONG_INDEX_RECORD",
	ErrProc:               "ER_PROC_LUA",
	ErrAccessDenied:       "ER_ACCESS_DENIED",
	ErrAuthFailed:         "ER_AUTH_FAILED",
	ErrUnsupported:        "ER_UNSUPPORTED",
}

// IsError reports whether a raw response code carries the error flag.
func IsError(code uint32) bool {
	return code&ErrFlag != 0
}

// ErrorClass extracts the error class bits from a raw response code.
func ErrorClass(code uint32) uint32 {
	return code & ErrClassMask
}

// ErrorName maps a raw response code to its symbolic name. Unknown classes
// synthesize ER_UNKNOWN_<n> rather than panicking or dropping the detail.
func ErrorName(code uint32) string {
	class := ErrorClass(code)
	if name, ok := errClassName[class]; ok {
		return name
	}
	return fmt.Sprintf("ER_UNKNOWN_%d", class)
}

// IsWrongSchemaVersion reports whether a raw response code is the one class
// the high-level client retries on.
func IsWrongSchemaVersion(code uint32) bool {
	return IsError(code) && ErrorClass(code) == ErrWrongSchemaVersion
}
