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

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	liberr "github/sabouaram/tupledb/errors"
	"github/sabouaram/tupledb/internal/wire"
	"github/sabouaram/tupledb/transport"
)

// Discoverer runs schema discovery against one connection and coalesces
// concurrent callers racing the same invalidation into a single run, via
// golang.org/x/sync/singleflight.
type Discoverer struct {
	conn  *transport.Conn
	cache *Cache
	group singleflight.Group
}

// NewDiscoverer builds a Discoverer for conn, populating cache on Ensure.
func NewDiscoverer(conn *transport.Conn, cache *Cache) *Discoverer {
	return &Discoverer{conn: conn, cache: cache}
}

// Ensure runs discovery if the cache is not currently valid. Concurrent
// callers during an invalid window share a single discovery run and all
// observe its result.
func (d *Discoverer) Ensure(ctx context.Context) error {
	if d.cache.Valid() {
		return nil
	}

	_, err, _ := d.group.Do("discover", func() (interface{}, error) {
		if d.cache.Valid() {
			return nil, nil
		}
		return nil, d.run(ctx)
	})
	return err
}

func (d *Discoverer) run(ctx context.Context) error {
	spaceRows, err := d.selectAll(ctx, wire.SpaceVSpace)
	if err != nil {
		return liberr.NewErrorTrace(ErrorDiscoveryFailed.Int(), ErrorDiscoveryFailed.Message(), "", 0,
			fmt.Errorf("discover spaces: %w", err))
	}

	indexRows, err := d.selectAll(ctx, wire.SpaceVIndex)
	if err != nil {
		return liberr.NewErrorTrace(ErrorDiscoveryFailed.Int(), ErrorDiscoveryFailed.Message(), "", 0,
			fmt.Errorf("discover indexes: %w", err))
	}

	spaces := buildSpaces(spaceRows, indexRows)

	schemaID, err := d.ping(ctx)
	if err != nil {
		return liberr.NewErrorTrace(ErrorDiscoveryFailed.Int(), ErrorDiscoveryFailed.Message(), "", 0,
			fmt.Errorf("ping for schema id: %w", err))
	}

	d.cache.Replace(spaces, schemaID)
	return nil
}

func (d *Discoverer) selectAll(ctx context.Context, space uint32) ([][]interface{}, error) {
	req := &wire.Request{
		Code: wire.ReqSelect,
		Body: map[int]interface{}{
			wire.KeySpace:    space,
			wire.KeyIndex:    uint32(0),
			wire.KeyIterator: uint32(wire.IterAll),
			wire.KeyKey:      []interface{}{},
		},
	}

	fut, err := d.conn.Send(req)
	if err != nil {
		return nil, err
	}

	resp, err := fut.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !resp.Ok() {
		return nil, fmt.Errorf("select on space %d: %s", space, resp.Error)
	}

	return resp.Data, nil
}

func (d *Discoverer) ping(ctx context.Context) (uint32, error) {
	fut, err := d.conn.Send(&wire.Request{Code: wire.ReqPing, Body: map[int]interface{}{}})
	if err != nil {
		return 0, err
	}

	resp, err := fut.Get(ctx)
	if err != nil {
		return 0, err
	}

	return resp.SchemaID, nil
}
