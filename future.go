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

package tupledb

import (
	"context"

	"github/sabouaram/tupledb/internal/wire"
)

// Future is returned immediately by every operation; Get blocks the caller
// that chooses to wait for the decoded result.
type Future struct {
	done  chan struct{}
	tuple *Tuple
	resp  *wire.Response
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(tuple *Tuple, resp *wire.Response, err error) {
	f.tuple = tuple
	f.resp = resp
	f.err = err
	close(f.done)
}

// Get blocks until the operation completes or ctx is done, whichever comes
// first, and returns the decoded tuple chain (nil on a non-tuple response,
// e.g. a bare ping ack).
func (f *Future) Get(ctx context.Context) (*Tuple, error) {
	select {
	case <-f.done:
		return f.tuple, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Response returns the raw response envelope once the future is done, or nil
// before that.
func (f *Future) Response() *wire.Response {
	select {
	case <-f.done:
		return f.resp
	default:
		return nil
	}
}
