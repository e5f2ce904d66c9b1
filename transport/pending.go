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
	"time"

	libatm "github/sabouaram/tupledb/atomic"
)

// pendingEntry tracks one in-flight request: when it was issued, its
// optional timeout timer, and the Future its completion fulfils.
type pendingEntry struct {
	issued time.Time
	timer  *time.Timer
	future *Future
}

// pendingTable is the request id -> pendingEntry map. It is touched from the
// sender (on Send), the read loop (on reply), the timeout timer (on expiry),
// and Close (drain-on-disconnect) - never under an explicit lock, since the
// underlying store is the lock-free adapted atomic map.
type pendingTable struct {
	m libatm.MapTyped[uint32, *pendingEntry]
}

func newPendingTable() *pendingTable {
	return &pendingTable{m: libatm.NewMapTyped[uint32, *pendingEntry]()}
}

func (p *pendingTable) add(id uint32, e *pendingEntry) {
	p.m.Store(id, e)
}

func (p *pendingTable) len() int {
	n := 0
	p.m.Range(func(_ uint32, _ *pendingEntry) bool {
		n++
		return true
	})
	return n
}

// takeOnReply removes and returns the entry matching a reply's sync id. A
// reply for an unknown id (already timed out, or never issued) returns
// ok == false and is logged by the caller, never treated as fatal.
func (p *pendingTable) takeOnReply(id uint32) (*pendingEntry, bool) {
	e, ok := p.m.LoadAndDelete(id)
	if ok && e.timer != nil {
		e.timer.Stop()
	}
	return e, ok
}

// takeOnTimeout removes the entry for id only if it is still the same entry
// the timer was armed for - guards against the timer firing after a reply
// already removed it.
func (p *pendingTable) takeOnTimeout(id uint32, want *pendingEntry) (*pendingEntry, bool) {
	if p.m.CompareAndDelete(id, want) {
		return want, true
	}
	return nil, false
}

// drain removes every pending entry and fails each one's future with err.
func (p *pendingTable) drain(err error) {
	ids := make([]uint32, 0)
	p.m.Range(func(id uint32, _ *pendingEntry) bool {
		ids = append(ids, id)
		return true
	})

	for _, id := range ids {
		e, ok := p.m.LoadAndDelete(id)
		if !ok {
			continue
		}
		if e.timer != nil {
			e.timer.Stop()
		}
		e.future.complete(nil, err)
	}
}
