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

// Package wire implements the length-prefixed binary frame format spoken by
// the tuple store server: a small header map and a body map, both keyed by
// numeric constants, encoded with the server's msgpack-style serialization.
package wire

// Header keys.
const (
	KeyCode     = 0x00 // request type / response status code
	KeySync     = 0x01 // request id echoed back by the server
	KeySchemaID = 0x05 // cached schema id the request was issued against
)

// Body keys.
const (
	KeySpace    = 0x10
	KeyIndex    = 0x11
	KeyLimit    = 0x12
	KeyOffset   = 0x13
	KeyIterator = 0x14
	KeyKey      = 0x20
	KeyTuple    = 0x21
	KeyFunction = 0x22
	KeyOps      = 0x28
	KeyError    = 0x31
)

// Request type codes.
const (
	ReqPing    uint32 = 0x00
	ReqSelect  uint32 = 0x01
	ReqInsert  uint32 = 0x02
	ReqReplace uint32 = 0x03
	ReqUpdate  uint32 = 0x04
	ReqDelete  uint32 = 0x05
	ReqCall    uint32 = 0x06
	ReqAuth    uint32 = 0x07
	ReqEval    uint32 = 0x08
	ReqUpsert  uint32 = 0x09
)

// Update operation codes, carried as the first element of each op tuple.
const (
	UpdateSet        byte = '='
	UpdateAdd        byte = '+'
	UpdateSub        byte = '-'
	UpdateAnd        byte = '&'
	UpdateOr         byte = '|'
	UpdateXor        byte = '^'
	UpdateSplice     byte = ':'
	UpdateDelete     byte = '#'
	UpdateListInsert byte = '!'
)

// Iterator codes for Select.
type Iterator uint32

const (
	IterAll Iterator = iota
	IterEQ
	IterGE
	IterGT
	IterLE
	IterLT
)

func (it Iterator) String() string {
	switch it {
	case IterAll:
		return "ALL"
	case IterEQ:
		return "EQ"
	case IterGE:
		return "GE"
	case IterGT:
		return "GT"
	case IterLE:
		return "LE"
	case IterLT:
		return "LT"
	default:
		return "UNKNOWN"
	}
}

// Metadata space ids. Part of the wire contract, never configurable.
const (
	SpaceVSpace uint32 = 281
	SpaceVIndex uint32 = 289
)
