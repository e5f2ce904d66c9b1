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
	"fmt"

	"github/sabouaram/tupledb/internal/wire"
	"github/sabouaram/tupledb/schema"
)

// FieldRef names the target field of an UpdateOp, by name (resolved against
// the space descriptor) or by raw numeric position.
type FieldRef struct {
	named bool
	name  string
	pos   uint32
}

// FieldByName builds a FieldRef resolved by name at call time.
func FieldByName(name string) FieldRef {
	return FieldRef{named: true, name: name}
}

// FieldByPos builds a FieldRef that bypasses name resolution.
func FieldByPos(pos uint32) FieldRef {
	return FieldRef{pos: pos}
}

// UpdateOp is one operation in an ordered update/upsert op list: set, one of
// the arithmetic/bitwise ops, a byte-range splice, or a list insert/delete.
type UpdateOp struct {
	code   byte
	field  FieldRef
	value  interface{}
	offset uint32
	count  uint32
	insert interface{}
}

func Set(field FieldRef, value interface{}) UpdateOp {
	return UpdateOp{code: wire.UpdateSet, field: field, value: value}
}

func Add(field FieldRef, value interface{}) UpdateOp {
	return UpdateOp{code: wire.UpdateAdd, field: field, value: value}
}

func Sub(field FieldRef, value interface{}) UpdateOp {
	return UpdateOp{code: wire.UpdateSub, field: field, value: value}
}

func And(field FieldRef, mask interface{}) UpdateOp {
	return UpdateOp{code: wire.UpdateAnd, field: field, value: mask}
}

func Or(field FieldRef, mask interface{}) UpdateOp {
	return UpdateOp{code: wire.UpdateOr, field: field, value: mask}
}

func Xor(field FieldRef, mask interface{}) UpdateOp {
	return UpdateOp{code: wire.UpdateXor, field: field, value: mask}
}

// Splice replaces count bytes starting at offset in a STR/UTF8STR field with
// insert.
func Splice(field FieldRef, offset, count uint32, insert interface{}) UpdateOp {
	return UpdateOp{code: wire.UpdateSplice, field: field, offset: offset, count: count, insert: insert}
}

func ListInsert(field FieldRef, value interface{}) UpdateOp {
	return UpdateOp{code: wire.UpdateListInsert, field: field, value: value}
}

func ListDelete(field FieldRef) UpdateOp {
	return UpdateOp{code: wire.UpdateDelete, field: field}
}

func resolveFieldPos(sp *schema.Space, f FieldRef) (uint32, error) {
	if !f.named {
		return f.pos, nil
	}
	if sp == nil {
		return 0, fmt.Errorf("tupledb: cannot resolve named field %q on a numeric-only space", f.name)
	}
	pos, ok := sp.FieldIndex(f.name)
	if !ok {
		return 0, ErrorUnknownField.Error(fmt.Errorf("field %q", f.name))
	}
	return uint32(pos), nil
}

func fieldType(sp *schema.Space, pos uint32) schema.FieldType {
	if sp == nil {
		return schema.TypeSTR
	}
	return sp.FieldType(int(pos))
}

// encodeOps packs an ordered UpdateOp list into the wire's (code, field,
// args...) tuple shape.
func encodeOps(sp *schema.Space, ops []UpdateOp) ([]interface{}, error) {
	out := make([]interface{}, 0, len(ops))

	// Numeric-only spaces carry no descriptor, so their op arguments pass
	// through uncoded the same way tuple and key values do.
	code := func(pos uint32, v interface{}) (interface{}, error) {
		if sp == nil {
			return v, nil
		}
		return schema.EncodeValue(sp.FieldType(int(pos)), v)
	}

	for _, op := range ops {
		pos, err := resolveFieldPos(sp, op.field)
		if err != nil {
			return nil, err
		}

		switch op.code {
		case wire.UpdateDelete:
			out = append(out, []interface{}{string(op.code), pos})

		case wire.UpdateSplice:
			val, err := code(pos, op.insert)
			if err != nil {
				return nil, err
			}
			out = append(out, []interface{}{string(op.code), pos, op.offset, op.count, val})

		default:
			val, err := code(pos, op.value)
			if err != nil {
				return nil, err
			}
			out = append(out, []interface{}{string(op.code), pos, val})
		}
	}

	return out, nil
}
