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
	"github/sabouaram/tupledb/schema"
)

// builder produces the request to send for one attempt, given the resolved
// space/index descriptors and ids of the attempt. sp and idx are both nil
// when the caller addressed the space purely by number; idx alone is nil when
// a numeric index id on a named space has no discovered descriptor.
type builder func(sp *schema.Space, idx *schema.Index, spaceID, indexID uint32) (*wire.Request, error)

// runTuple resolves space/index, sends the built request, decodes a tuple
// response, and retries exactly once if the server reports the schema the
// request was built against went stale underneath it.
func (c *Client) runTuple(ctx context.Context, op string, space SpaceRef, index IndexRef, build builder) (*Future, error) {
	out := newFuture()

	go func() {
		tuple, resp, err := c.executeOnce(ctx, space, index, build, true)
		c.metrics.ObserveRequest(op, err == nil)
		out.complete(tuple, resp, err)
	}()

	return out, nil
}

// runRaw sends a request that never addresses a space (ping, call, eval) and
// so never participates in the stale-schema retry.
func (c *Client) runRaw(ctx context.Context, op string, build func() (*wire.Request, error)) (*Future, error) {
	out := newFuture()

	go func() {
		req, err := build()
		if err != nil {
			c.metrics.ObserveRequest(op, false)
			out.complete(nil, nil, err)
			return
		}

		tuple, resp, err := c.send(ctx, req, nil)
		if err == nil && resp != nil && wire.IsWrongSchemaVersion(resp.Code) {
			err = serverError(resp)
		}
		c.metrics.ObserveRequest(op, err == nil)
		out.complete(tuple, resp, err)
	}()

	return out, nil
}

func (c *Client) executeOnce(ctx context.Context, space SpaceRef, index IndexRef, build builder, allowRetry bool) (*Tuple, *wire.Response, error) {
	sp, idx, spaceID, indexID, err := c.resolve(ctx, space, index)
	if err != nil {
		return nil, nil, err
	}

	req, err := build(sp, idx, spaceID, indexID)
	if err != nil {
		return nil, nil, err
	}

	tuple, resp, err := c.send(ctx, req, sp)
	if err != nil {
		return nil, resp, err
	}

	if resp != nil && wire.IsWrongSchemaVersion(resp.Code) {
		if allowRetry {
			c.cache.Invalidate()
			if c.cfg.Hooks.SchemaInvalidated != nil {
				go c.cfg.Hooks.SchemaInvalidated()
			}
			return c.executeOnce(ctx, space, index, build, false)
		}
		// The retry already rebuilt the request against a freshly
		// invalidated-and-reloaded schema; a second consecutive stale-schema
		// reply means the server disagrees with us regardless, so surface it
		// instead of handing back an empty "success".
		return tuple, resp, serverError(resp)
	}

	return tuple, resp, nil
}

// send issues req over the connection, waits for its response, and turns a
// well-formed error reply into a Go error without tearing the future down. A
// stale-schema reply is the one exception: it comes back with a nil error so
// the caller can decide whether to retry.
func (c *Client) send(ctx context.Context, req *wire.Request, sp *schema.Space) (*Tuple, *wire.Response, error) {
	req.SchemaID = c.cache.SchemaID()

	tf, err := c.conn.Send(req)
	if err != nil {
		return nil, nil, err
	}

	resp, err := tf.Get(ctx)
	if err != nil {
		return nil, nil, err
	}

	if !resp.Ok() && !wire.IsWrongSchemaVersion(resp.Code) {
		return nil, resp, serverError(resp)
	}

	tuple, err := decodeTuples(sp, resp.Data)
	if err != nil {
		return nil, resp, err
	}

	return tuple, resp, nil
}
