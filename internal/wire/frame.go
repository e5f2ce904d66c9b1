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

package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ugorji/go/codec"
)

var mpHandle = &codec.MsgpackHandle{}

// WriteExt keeps the str/bin distinction on encode and decode: coded field
// values travel as bin and come back []byte, names and error messages travel
// as str and come back string. RawToString stays off, since it would turn bin
// into string on decode as well.
func init() {
	mpHandle.WriteExt = true
}

// Request is the envelope sent to the server: a request type code, a
// per-connection sync id, the schema id the caller believes is current (0
// when the operation predates schema discovery, e.g. ping), and a
// type-specific body map keyed by the Key* constants.
type Request struct {
	Code     uint32
	Sync     uint32
	SchemaID uint32
	Body     map[int]interface{}
}

// Response is the envelope decoded from the server: the echoed sync id, a
// raw response code (0 == success, high bit set == error), the schema id
// the server executed against, an optional error message, and an optional
// payload of tuples.
type Response struct {
	Sync     uint32
	Code     uint32
	SchemaID uint32
	Error    string
	Data     [][]interface{}
}

// Ok reports whether the response carries a non-error code.
func (r *Response) Ok() bool {
	return !IsError(r.Code)
}

// Uint32 returns the body value at key normalized to uint32. The msgpack
// decoder hands integers back as uint64 or int64 depending on the wire
// format, so a direct type assertion on a decoded body is a trap.
func (r *Request) Uint32(key int) uint32 {
	return toUint32(r.Body[key])
}

// Encode serializes a request as header-map + body-map, each length-prefixed
// as a single frame: a 4-byte big-endian length prefix followed by the
// concatenated msgpack encoding of both maps.
func Encode(req *Request) ([]byte, error) {
	header := map[int]interface{}{
		KeyCode: req.Code,
		KeySync: req.Sync,
	}
	if req.SchemaID != 0 {
		header[KeySchemaID] = req.SchemaID
	}

	var buf []byte
	enc := codec.NewEncoderBytes(&buf, mpHandle)
	if err := enc.Encode(header); err != nil {
		return nil, fmt.Errorf("wire: encode header: %w", err)
	}
	if err := enc.Encode(req.Body); err != nil {
		return nil, fmt.Errorf("wire: encode body: %w", err)
	}

	framed := make([]byte, 4+len(buf))
	binary.BigEndian.PutUint32(framed[:4], uint32(len(buf)))
	copy(framed[4:], buf)
	return framed, nil
}

// readRawFrame reads one length-prefixed frame off r and decodes its two
// constituent msgpack maps. Shared by ReadFrame (client-side response
// decoding) and ReadRequestFrame (server-side request decoding in tests).
func readRawFrame(r *bufio.Reader) (header, body map[int]interface{}, err error) {
	var lenBuf [4]byte
	if _, err = io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, nil, err
	}
	size := binary.BigEndian.Uint32(lenBuf[:])
	if size == 0 {
		return nil, nil, fmt.Errorf("wire: zero-length frame")
	}

	raw := make([]byte, size)
	if _, err = io.ReadFull(r, raw); err != nil {
		return nil, nil, fmt.Errorf("wire: short frame: %w", err)
	}

	dec := codec.NewDecoderBytes(raw, mpHandle)

	if err = dec.Decode(&header); err != nil {
		return nil, nil, fmt.Errorf("wire: decode header: %w", err)
	}
	if err = dec.Decode(&body); err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("wire: decode body: %w", err)
	}
	err = nil

	return header, body, nil
}

// ReadFrame blocks until one complete frame is available on r and returns the
// decoded response. Partial frames are buffered by the bufio.Reader across
// calls, satisfying the "consumes whole frames only" requirement.
func ReadFrame(r *bufio.Reader) (*Response, error) {
	header, payload, err := readRawFrame(r)
	if err != nil {
		return nil, err
	}

	resp := &Response{}
	if v, ok := header[KeyCode]; ok {
		resp.Code = toUint32(v)
	}
	if v, ok := header[KeySync]; ok {
		resp.Sync = toUint32(v)
	}
	if v, ok := header[KeySchemaID]; ok {
		resp.SchemaID = toUint32(v)
	}

	if v, ok := payload[KeyError]; ok {
		if s, ok := v.(string); ok {
			resp.Error = s
		}
	}
	if v, ok := payload[KeyTuple]; ok {
		resp.Data = toTupleList(v)
	}

	return resp, nil
}

// ReadRequestFrame decodes one request frame off r. Used by server-side test
// doubles, never by the client itself.
func ReadRequestFrame(r *bufio.Reader) (*Request, error) {
	header, body, err := readRawFrame(r)
	if err != nil {
		return nil, err
	}

	req := &Request{Body: body}
	if v, ok := header[KeyCode]; ok {
		req.Code = toUint32(v)
	}
	if v, ok := header[KeySync]; ok {
		req.Sync = toUint32(v)
	}
	if v, ok := header[KeySchemaID]; ok {
		req.SchemaID = toUint32(v)
	}

	return req, nil
}

// EncodeResponse serializes a response the same way Encode serializes a
// request. Used by server-side test doubles, never by the client itself.
func EncodeResponse(resp *Response) ([]byte, error) {
	header := map[int]interface{}{
		KeyCode: resp.Code,
		KeySync: resp.Sync,
	}
	if resp.SchemaID != 0 {
		header[KeySchemaID] = resp.SchemaID
	}

	body := map[int]interface{}{}
	if resp.Error != "" {
		body[KeyError] = resp.Error
	}
	if resp.Data != nil {
		tuples := make([]interface{}, len(resp.Data))
		for i, t := range resp.Data {
			tuples[i] = t
		}
		body[KeyTuple] = tuples
	}

	var buf []byte
	enc := codec.NewEncoderBytes(&buf, mpHandle)
	if err := enc.Encode(header); err != nil {
		return nil, fmt.Errorf("wire: encode header: %w", err)
	}
	if err := enc.Encode(body); err != nil {
		return nil, fmt.Errorf("wire: encode body: %w", err)
	}

	framed := make([]byte, 4+len(buf))
	binary.BigEndian.PutUint32(framed[:4], uint32(len(buf)))
	copy(framed[4:], buf)
	return framed, nil
}

func toUint32(v interface{}) uint32 {
	switch n := v.(type) {
	case uint32:
		return n
	case uint64:
		return uint32(n)
	case int64:
		return uint32(n)
	case int:
		return uint32(n)
	default:
		return 0
	}
}

func toTupleList(v interface{}) [][]interface{} {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([][]interface{}, 0, len(raw))
	for _, item := range raw {
		if tuple, ok := item.([]interface{}); ok {
			out = append(out, tuple)
		}
	}
	return out
}
