/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Package atomic provides a single lock-free primitive this module actually
// needs: a generic, typed wrapper over sync.Map. It backs transport's
// pending-request table (request id -> in-flight entry) and errors/pool's
// error-by-index store, both of which are written and read from more than
// one goroutine without an explicit mutex.
package atomic

import "sync"

// MapTyped is a sync.Map with a typed value instead of interface{}. Methods
// follow sync.Map's semantics with two exceptions: a stored zero value of V
// reads back as absent (ok and loaded report false), and Range deletes such
// entries instead of visiting them.
type MapTyped[K comparable, V any] interface {
	// Load returns the value stored for key, or ok=false if absent.
	Load(key K) (value V, ok bool)
	// Store sets the value for key, overwriting any existing value.
	Store(key K, value V)
	// LoadOrStore returns the existing value for key if present; otherwise it
	// stores and returns value. loaded reports which case occurred.
	LoadOrStore(key K, value V) (actual V, loaded bool)
	// LoadAndDelete removes key and returns its value, if it existed.
	LoadAndDelete(key K) (value V, loaded bool)
	// Delete removes key, if it exists.
	Delete(key K)
	// Swap stores value for key and returns the previous value, if any.
	Swap(key K, value V) (previous V, loaded bool)
	// CompareAndSwap stores new for key only if the current value equals old.
	CompareAndSwap(key K, old, new V) bool
	// CompareAndDelete deletes key only if its current value equals old.
	CompareAndDelete(key K, old V) (deleted bool)
	// Range calls f for every stored entry, in no particular order, until f
	// returns false.
	Range(f func(key K, value V) bool)
}

// NewMapTyped returns an empty MapTyped backed by a sync.Map.
func NewMapTyped[K comparable, V any]() MapTyped[K, V] {
	return &mt[K, V]{
		m: &ma[K]{m: sync.Map{}},
	}
}
