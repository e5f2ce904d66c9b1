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

// SelectOptions controls a Select call's result window and search direction.
type SelectOptions struct {
	Limit    uint32
	Offset   uint32
	Iterator wire.Iterator
}

// Ping round-trips the connection without touching the schema cache.
func (c *Client) Ping(ctx context.Context) (*Future, error) {
	return c.runRaw(ctx, "ping", func() (*wire.Request, error) {
		return &wire.Request{Code: wire.ReqPing, Body: map[int]interface{}{}}, nil
	})
}

// Insert adds a new tuple to space. Fails with a server error if a tuple
// with a colliding key already exists.
func (c *Client) Insert(ctx context.Context, space SpaceRef, tuple []interface{}) (*Future, error) {
	return c.runTuple(ctx, "insert", space, IndexPrimary, func(sp *schema.Space, _ *schema.Index, spaceID, _ uint32) (*wire.Request, error) {
		values, err := encodeTuple(sp, tuple)
		if err != nil {
			return nil, err
		}
		return &wire.Request{Code: wire.ReqInsert, Body: map[int]interface{}{
			wire.KeySpace: spaceID,
			wire.KeyTuple: values,
		}}, nil
	})
}

// Replace inserts tuple, overwriting any existing tuple with a colliding key.
func (c *Client) Replace(ctx context.Context, space SpaceRef, tuple []interface{}) (*Future, error) {
	return c.runTuple(ctx, "replace", space, IndexPrimary, func(sp *schema.Space, _ *schema.Index, spaceID, _ uint32) (*wire.Request, error) {
		values, err := encodeTuple(sp, tuple)
		if err != nil {
			return nil, err
		}
		return &wire.Request{Code: wire.ReqReplace, Body: map[int]interface{}{
			wire.KeySpace: spaceID,
			wire.KeyTuple: values,
		}}, nil
	})
}

// Delete removes the tuple(s) matching key on index.
func (c *Client) Delete(ctx context.Context, space SpaceRef, index IndexRef, key []interface{}) (*Future, error) {
	return c.runTuple(ctx, "delete", space, index, func(sp *schema.Space, idx *schema.Index, spaceID, indexID uint32) (*wire.Request, error) {
		values, err := encodeKey(sp, idx, key)
		if err != nil {
			return nil, err
		}
		return &wire.Request{Code: wire.ReqDelete, Body: map[int]interface{}{
			wire.KeySpace: spaceID,
			wire.KeyIndex: indexID,
			wire.KeyKey:   values,
		}}, nil
	})
}

// Select returns the tuples matching key on index, subject to opts.
func (c *Client) Select(ctx context.Context, space SpaceRef, index IndexRef, key []interface{}, opts SelectOptions) (*Future, error) {
	return c.runTuple(ctx, "select", space, index, func(sp *schema.Space, idx *schema.Index, spaceID, indexID uint32) (*wire.Request, error) {
		values, err := encodeKey(sp, idx, key)
		if err != nil {
			return nil, err
		}
		return &wire.Request{Code: wire.ReqSelect, Body: map[int]interface{}{
			wire.KeySpace:    spaceID,
			wire.KeyIndex:    indexID,
			wire.KeyKey:      values,
			wire.KeyLimit:    opts.Limit,
			wire.KeyOffset:   opts.Offset,
			wire.KeyIterator: uint32(opts.Iterator),
		}}, nil
	})
}

// Update applies an ordered list of field operations to the tuple matching
// key on index.
func (c *Client) Update(ctx context.Context, space SpaceRef, index IndexRef, key []interface{}, ops []UpdateOp) (*Future, error) {
	return c.runTuple(ctx, "update", space, index, func(sp *schema.Space, idx *schema.Index, spaceID, indexID uint32) (*wire.Request, error) {
		values, err := encodeKey(sp, idx, key)
		if err != nil {
			return nil, err
		}
		encodedOps, err := encodeOps(sp, ops)
		if err != nil {
			return nil, err
		}
		return &wire.Request{Code: wire.ReqUpdate, Body: map[int]interface{}{
			wire.KeySpace: spaceID,
			wire.KeyIndex: indexID,
			wire.KeyKey:   values,
			wire.KeyOps:   encodedOps,
		}}, nil
	})
}

// Upsert inserts tuple if no tuple with a colliding key exists, otherwise
// applies ops to the existing tuple.
func (c *Client) Upsert(ctx context.Context, space SpaceRef, tuple []interface{}, ops []UpdateOp) (*Future, error) {
	return c.runTuple(ctx, "upsert", space, IndexPrimary, func(sp *schema.Space, _ *schema.Index, spaceID, _ uint32) (*wire.Request, error) {
		values, err := encodeTuple(sp, tuple)
		if err != nil {
			return nil, err
		}
		encodedOps, err := encodeOps(sp, ops)
		if err != nil {
			return nil, err
		}
		return &wire.Request{Code: wire.ReqUpsert, Body: map[int]interface{}{
			wire.KeySpace: spaceID,
			wire.KeyTuple: values,
			wire.KeyOps:   encodedOps,
		}}, nil
	})
}

// Call invokes a server-side stored procedure by name.
func (c *Client) Call(ctx context.Context, proc string, args []interface{}) (*Future, error) {
	return c.runRaw(ctx, "call", func() (*wire.Request, error) {
		return &wire.Request{Code: wire.ReqCall, Body: map[int]interface{}{
			wire.KeyFunction: proc,
			wire.KeyTuple:    args,
		}}, nil
	})
}

// Eval sends expr for raw-expression evaluation instead of a named stored
// procedure call.
func (c *Client) Eval(ctx context.Context, expr string, args []interface{}) (*Future, error) {
	return c.runRaw(ctx, "eval", func() (*wire.Request, error) {
		return &wire.Request{Code: wire.ReqEval, Body: map[int]interface{}{
			wire.KeyFunction: expr,
			wire.KeyTuple:    args,
		}}, nil
	})
}

func encodeTuple(sp *schema.Space, values []interface{}) ([]interface{}, error) {
	if sp == nil {
		// Numeric-only space: no descriptor, no coding.
		return values, nil
	}

	out := make([]interface{}, len(values))
	for i, v := range values {
		encoded, err := schema.EncodeValue(fieldType(sp, uint32(i)), v)
		if err != nil {
			return nil, err
		}
		out[i] = encoded
	}
	return out, nil
}

// encodeKey codes a key's parts against the resolved index's own field list,
// not the space's positional prefix: a secondary index can reorder fields or
// narrow them to a type that differs from the space's declared prefix, and a
// key always addresses the index it's being sent against. With a nil sp (a
// space addressed purely by number) the values are returned uncoded; with a
// nil idx but a known sp (an index id discovery did not report) the space's
// positional types are used instead.
func encodeKey(sp *schema.Space, idx *schema.Index, values []interface{}) ([]interface{}, error) {
	if sp == nil {
		return values, nil
	}

	out := make([]interface{}, len(values))
	for i, v := range values {
		encoded, err := schema.EncodeValue(keyFieldType(sp, idx, uint32(i)), v)
		if err != nil {
			return nil, err
		}
		out[i] = encoded
	}
	return out, nil
}

// keyFieldType resolves the coding for the i-th element of a key against
// idx's own field list (by the space position that index field maps to),
// falling back to the space's positional field type when idx doesn't cover
// position i.
func keyFieldType(sp *schema.Space, idx *schema.Index, i uint32) schema.FieldType {
	if idx != nil && int(i) < len(idx.Fields) {
		return fieldType(sp, idx.Fields[i].Pos)
	}
	return fieldType(sp, i)
}
