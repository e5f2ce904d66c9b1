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
	"encoding/binary"
	"fmt"
)

// EncodeValue packs a Go value into its wire representation for field type t.
func EncodeValue(t FieldType, v interface{}) (interface{}, error) {
	switch t {
	case TypeNUM:
		n, err := toUint32(v)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, n)
		return b, nil

	case TypeNUM64:
		n, err := toUint64(v)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, n)
		return b, nil

	case TypeUTF8STR:
		switch s := v.(type) {
		case string:
			return []byte(s), nil
		case []byte:
			return s, nil
		}
		return nil, fmt.Errorf("schema: UTF8STR value must be a string, got %T", v)

	case TypeSTR:
		switch s := v.(type) {
		case []byte:
			return s, nil
		case string:
			return []byte(s), nil
		}
		return nil, fmt.Errorf("schema: STR value must be bytes or a string, got %T", v)

	default:
		return nil, fmt.Errorf("schema: unknown field type %q", t)
	}
}

// DecodeValue unpacks a wire value into its typed Go representation for field
// type t. UTF8STR decodes to string; STR stays raw bytes - the pass-through
// versus decode-on-unpack split the value coding rules require.
func DecodeValue(t FieldType, raw interface{}) (interface{}, error) {
	b, ok := toBytes(raw)
	if !ok {
		return raw, nil
	}

	switch t {
	case TypeNUM:
		if len(b) != 4 {
			return nil, fmt.Errorf("schema: NUM value must be 4 bytes, got %d", len(b))
		}
		return binary.LittleEndian.Uint32(b), nil

	case TypeNUM64:
		if len(b) != 8 {
			return nil, fmt.Errorf("schema: NUM64 value must be 8 bytes, got %d", len(b))
		}
		return binary.LittleEndian.Uint64(b), nil

	case TypeUTF8STR:
		return string(b), nil

	case TypeSTR:
		return b, nil

	default:
		return nil, fmt.Errorf("schema: unknown field type %q", t)
	}
}

func toBytes(v interface{}) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case string:
		return []byte(b), true
	default:
		return nil, false
	}
}

func toUint32(v interface{}) (uint32, error) {
	switch n := v.(type) {
	case uint32:
		return n, nil
	case uint64:
		return uint32(n), nil
	case int:
		return uint32(n), nil
	case int64:
		return uint32(n), nil
	}
	return 0, fmt.Errorf("schema: NUM value must be an unsigned integer, got %T", v)
}

func toUint64(v interface{}) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	case int:
		return uint64(n), nil
	case int64:
		return uint64(n), nil
	}
	return 0, fmt.Errorf("schema: NUM64 value must be an unsigned integer, got %T", v)
}
