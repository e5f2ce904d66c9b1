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

package schema

import "sync"

// Cache is the instance-scoped, lazily (re)populated space/index metadata for
// one connection. One cache per client; invalidated wholesale on a stale
// schema reply, re-populated lazily by the next operation that needs a named
// lookup.
type Cache struct {
	mu       sync.RWMutex
	byName   map[string]*Space
	byID     map[uint32]*Space
	schemaID uint32
	valid    bool
}

// NewCache returns an empty, invalid cache.
func NewCache() *Cache {
	return &Cache{}
}

// Valid reports whether the cache currently holds a usable set of spaces.
func (c *Cache) Valid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.valid
}

// SchemaID returns the schema id the current spaces were discovered under.
func (c *Cache) SchemaID() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.schemaID
}

// Invalidate clears the cache. The next lookup that needs a named space
// triggers discovery again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName = nil
	c.byID = nil
	c.schemaID = 0
	c.valid = false
}

// Replace installs a freshly discovered (or statically loaded) set of spaces.
func (c *Cache) Replace(spaces map[string]*Space, schemaID uint32) {
	byID := make(map[uint32]*Space, len(spaces))
	for _, sp := range spaces {
		byID[sp.ID] = sp
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName = spaces
	c.byID = byID
	c.schemaID = schemaID
	c.valid = true
}

// ByName resolves a space by its symbolic name.
func (c *Cache) ByName(name string) (*Space, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sp, ok := c.byName[name]
	return sp, ok
}

// ByID resolves a space by its numeric id.
func (c *Cache) ByID(id uint32) (*Space, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sp, ok := c.byID[id]
	return sp, ok
}
