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

package transport

import (
	"context"

	"github/sabouaram/tupledb/internal/wire"
)

// Future represents the eventual result of one in-flight request. It is
// completed exactly once, either by the read loop, a request timeout, or a
// connection teardown.
type Future struct {
	done chan struct{}
	resp *wire.Response
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// complete fulfils the future. It must run exactly once, since a second call
// panics on the already closed channel; the pending table hands each entry to
// a single owner, which keeps that to one call.
func (f *Future) complete(resp *wire.Response, err error) {
	f.resp = resp
	f.err = err
	close(f.done)
}

// Get blocks until the future completes or ctx is done, whichever comes
// first. A context cancellation does not cancel the underlying request; the
// reply (or the eventual timeout/disconnect completion) still arrives and is
// simply missed by this particular Get call.
func (f *Future) Get(ctx context.Context) (*wire.Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel closed when the future completes, for select-based
// callers that want to multiplex several futures.
func (f *Future) Done() <-chan struct{} {
	return f.done
}
