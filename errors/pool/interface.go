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

// Package pool collects errors from a batch of independent operations under
// sequential indices, so a caller driving many futures at once (the CLI's
// load command, for instance) can report one combined failure instead of
// bailing out on the first.
package pool

import (
	"sync/atomic"

	libatm "github/sabouaram/tupledb/atomic"
)

// Pool collects errors with automatic sequential indexing starting at 1.
// All methods are safe for concurrent use.
type Pool interface {
	// Add appends each non-nil error under the next sequential index.
	Add(e ...error)
	// Get returns the error at index i, or nil if absent.
	Get(i uint64) error
	// Set stores e at index i, overwriting any existing error there. A nil e
	// is ignored.
	Set(i uint64, e error)
	// Del removes the error at index i, if any.
	Del(i uint64)
	// Error combines every stored error into one, or returns nil if the pool
	// is empty.
	Error() error
	// Slice returns every stored error, in no particular order.
	Slice() []error
	// Len returns the number of non-nil errors currently stored.
	Len() uint64
	// MaxId returns the highest index currently stored, or 0 if empty.
	MaxId() uint64
	// Last returns the error at MaxId, or nil if empty.
	Last() error
	// Clear removes every stored error without resetting the index counter.
	Clear()
}

// New returns an empty Pool.
func New() Pool {
	return &mod{
		s: new(atomic.Uint64),
		l: libatm.NewMapTyped[uint64, error](),
	}
}
