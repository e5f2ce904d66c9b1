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

import "github/sabouaram/tupledb/schema"

// Tuple is one decoded row: positional and (when a space descriptor was
// available) named field access, plus singly-linked traversal across a
// multi-row result via Next.
type Tuple struct {
	Space *schema.Space
	Raw   []interface{}
	next  *Tuple
}

// Len returns the number of fields in the tuple.
func (t *Tuple) Len() int {
	return len(t.Raw)
}

// Get returns the field at the given position.
func (t *Tuple) Get(pos int) interface{} {
	if pos < 0 || pos >= len(t.Raw) {
		return nil
	}
	return t.Raw[pos]
}

// GetNamed returns the field named name, if the tuple carries a space
// descriptor that declares it.
func (t *Tuple) GetNamed(name string) (interface{}, bool) {
	if t.Space == nil {
		return nil, false
	}
	pos, ok := t.Space.FieldIndex(name)
	if !ok {
		return nil, false
	}
	return t.Get(pos), true
}

// Next returns the following tuple in a multi-row result, or nil at the end.
func (t *Tuple) Next() *Tuple {
	if t == nil {
		return nil
	}
	return t.next
}

// decodeTuples decodes a list of raw rows into a linked list of Tuple,
// field-by-field, when sp is known; otherwise each row is kept as raw values.
func decodeTuples(sp *schema.Space, rows [][]interface{}) (*Tuple, error) {
	var head, tail *Tuple

	for _, row := range rows {
		decoded := make([]interface{}, len(row))
		for i, raw := range row {
			if sp == nil {
				decoded[i] = raw
				continue
			}
			v, err := schema.DecodeValue(sp.FieldType(i), raw)
			if err != nil {
				return nil, err
			}
			decoded[i] = v
		}

		t := &Tuple{Space: sp, Raw: decoded}
		if head == nil {
			head = t
		} else {
			tail.next = t
		}
		tail = t
	}

	return head, nil
}
