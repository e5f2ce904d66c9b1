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

// Package tupledb is the high-level asynchronous client for a remote
// in-memory tuple store: it resolves spaces and fields through the schema
// cache, packs and issues requests over the transport connection, decodes
// replies into typed tuples, and transparently retries once on a stale
// schema error.
package tupledb

import (
	"fmt"
	"strconv"
)

// SpaceRef identifies a space either by symbolic name (resolved through the
// schema cache) or by its raw numeric id (bypasses the cache entirely; no
// value coding is applied to the call's arguments in that case).
type SpaceRef struct {
	named bool
	name  string
	id    uint32
}

// Named builds a SpaceRef resolved by name at call time.
func Named(name string) SpaceRef {
	return SpaceRef{named: true, name: name}
}

// Numbered builds a SpaceRef that bypasses schema resolution.
func Numbered(id uint32) SpaceRef {
	return SpaceRef{id: id}
}

// ParseSpaceRef applies the permissive "looks like a number" heuristic some
// callers want: a string that parses as an unsigned integer becomes a
// Numbered ref, anything else becomes a Named ref. This is opt-in only - it
// is never applied implicitly by the operations below.
func ParseSpaceRef(s string) SpaceRef {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return Numbered(uint32(n))
	}
	return Named(s)
}

func (r SpaceRef) String() string {
	if r.named {
		return r.name
	}
	return fmt.Sprintf("#%d", r.id)
}

// IndexRef identifies an index the same way SpaceRef identifies a space.
type IndexRef struct {
	named bool
	name  string
	id    uint32
}

// IndexByName builds an IndexRef resolved by name against the owning space.
func IndexByName(name string) IndexRef {
	return IndexRef{named: true, name: name}
}

// IndexByID builds an IndexRef that bypasses name resolution.
func IndexByID(id uint32) IndexRef {
	return IndexRef{id: id}
}

// IndexPrimary is the conventional id of a space's primary index.
var IndexPrimary = IndexByID(0)
