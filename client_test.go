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

package tupledb_test

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github/sabouaram/tupledb"
	"github/sabouaram/tupledb/internal/testserver"
	"github/sabouaram/tupledb/internal/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func splitHostPort(addr string) (string, int, error) {
	idx := strings.LastIndex(addr, ":")
	host := addr[:idx]
	port, err := strconv.Atoi(addr[idx+1:])
	return host, port, err
}

// usersMetadata answers the two discovery selects with a single "users"
// space (id NUM, name UTF8STR, score NUM), a primary index over id, and a
// secondary "by_name" index over the name field alone - its field order and
// types deliberately differ from the space's declared prefix, so a key coded
// against the wrong field list fails immediately.
func usersMetadata(schemaID uint32, space uint32) *wire.Response {
	switch space {
	case wire.SpaceVSpace:
		return &wire.Response{Data: [][]interface{}{
			{uint32(0), uint32(0), "users", "memtx", uint32(3), map[int]interface{}{}, []interface{}{
				[]interface{}{"id", "NUM"},
				[]interface{}{"name", "UTF8STR"},
				[]interface{}{"score", "NUM"},
			}},
		}}
	case wire.SpaceVIndex:
		return &wire.Response{Data: [][]interface{}{
			{uint32(0), uint32(0), "primary", "tree", map[int]interface{}{}, []interface{}{
				[]interface{}{uint32(0), "NUM"},
			}},
			{uint32(0), uint32(1), "by_name", "tree", map[int]interface{}{}, []interface{}{
				[]interface{}{uint32(1), "UTF8STR"},
			}},
		}}
	}
	return &wire.Response{SchemaID: schemaID}
}

// fakeStore is a tiny stateful fake backing the "users" space, keyed by the
// uint32 id field, enough to drive insert/select/update/upsert scenarios.
type fakeStore struct {
	mu       sync.Mutex
	rows     map[uint32][]interface{}
	schemaID uint32
	// staleOnce, when true, makes the next select against the users space
	// fail with WRONG_SCHEMA_VERSION exactly once, then bumps schemaID.
	staleOnce bool
	// staleAlways, when true, makes every select against the users space
	// fail with WRONG_SCHEMA_VERSION, never clearing - simulates a server
	// that disagrees with the client's schema even after the one retry.
	staleAlways bool
}

func newFakeStore(schemaID uint32) *fakeStore {
	return &fakeStore{rows: map[uint32][]interface{}{}, schemaID: schemaID}
}

func decodeID(raw interface{}) uint32 {
	b, ok := raw.([]byte)
	if !ok || len(b) < 4 {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func decodeUTF8(raw interface{}) string {
	b, _ := raw.([]byte)
	return string(b)
}

func (s *fakeStore) handler(req *wire.Request) *wire.Response {
	switch req.Code {
	case wire.ReqPing:
		s.mu.Lock()
		defer s.mu.Unlock()
		return &wire.Response{SchemaID: s.schemaID}

	case wire.ReqSelect:
		space := req.Uint32(wire.KeySpace)
		if space == wire.SpaceVSpace || space == wire.SpaceVIndex {
			s.mu.Lock()
			schemaID := s.schemaID
			s.mu.Unlock()
			return usersMetadata(schemaID, space)
		}
		return s.selectUsers(req)

	case wire.ReqInsert:
		return s.insert(req)

	case wire.ReqUpdate:
		return s.update(req)
	}

	return &wire.Response{}
}

func (s *fakeStore) checkSchema(req *wire.Request) *wire.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staleAlways {
		s.schemaID++
		return &wire.Response{Code: wire.ErrFlag | wire.ErrWrongSchemaVersion}
	}
	if s.staleOnce {
		s.staleOnce = false
		s.schemaID++
		return &wire.Response{Code: wire.ErrFlag | wire.ErrWrongSchemaVersion}
	}
	return nil
}

func (s *fakeStore) selectUsers(req *wire.Request) *wire.Response {
	if resp := s.checkSchema(req); resp != nil {
		return resp
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, _ := req.Body[wire.KeyKey].([]interface{})
	indexID := req.Uint32(wire.KeyIndex)
	limit := req.Uint32(wire.KeyLimit)
	offset := req.Uint32(wire.KeyOffset)

	var matched [][]interface{}
	switch {
	case len(key) == 0:
		for id := uint32(0); id < 16; id++ {
			if row, ok := s.rows[id]; ok {
				matched = append(matched, row)
			}
		}
	case indexID == 1:
		name := decodeUTF8(key[0])
		for _, row := range s.rows {
			if len(row) > 1 && decodeUTF8(row[1]) == name {
				matched = append(matched, row)
			}
		}
	default:
		if row, ok := s.rows[decodeID(key[0])]; ok {
			matched = append(matched, row)
		}
	}

	if offset > 0 && int(offset) < len(matched) {
		matched = matched[offset:]
	} else if int(offset) >= len(matched) {
		matched = nil
	}
	if limit > 0 && int(limit) < len(matched) {
		matched = matched[:limit]
	}

	return &wire.Response{Data: matched}
}

func (s *fakeStore) insert(req *wire.Request) *wire.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	tuple, _ := req.Body[wire.KeyTuple].([]interface{})
	if len(tuple) == 0 {
		return &wire.Response{Code: wire.ErrFlag | wire.ErrUnknown}
	}
	id := decodeID(tuple[0])
	if _, exists := s.rows[id]; exists {
		return &wire.Response{Code: wire.ErrFlag | wire.ErrTupleFound, Error: "duplicate key"}
	}
	s.rows[id] = tuple
	return &wire.Response{Data: [][]interface{}{tuple}}
}

func (s *fakeStore) update(req *wire.Request) *wire.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, _ := req.Body[wire.KeyKey].([]interface{})
	if len(key) == 0 {
		return &wire.Response{Code: wire.ErrFlag | wire.ErrTupleNotFound}
	}
	id := decodeID(key[0])
	row, ok := s.rows[id]
	if !ok {
		return &wire.Response{Code: wire.ErrFlag | wire.ErrTupleNotFound}
	}

	ops, _ := req.Body[wire.KeyOps].([]interface{})
	for _, rawOp := range ops {
		op, ok := rawOp.([]interface{})
		if !ok || len(op) < 2 {
			continue
		}
		code := opCode(op[0])
		pos := asUint32Field(op[1])

		switch code {
		case wire.UpdateAdd:
			row[pos] = addNum(row[pos], op[2])
		case wire.UpdateSub:
			row[pos] = subNum(row[pos], op[2])
		case wire.UpdateAnd, wire.UpdateOr, wire.UpdateXor:
			row[pos] = bitwise(code, row[pos], op[2])
		case wire.UpdateSet:
			row[pos] = op[2]
		case wire.UpdateDelete:
			row[pos] = []byte{}
		case wire.UpdateSplice:
			if len(op) < 5 {
				continue
			}
			offset := asUint32Field(op[2])
			count := asUint32Field(op[3])
			row[pos] = splice(row[pos], offset, count, op[4])
		case wire.UpdateListInsert:
			if len(op) < 3 {
				continue
			}
			for uint32(len(row)) <= pos {
				row = append(row, []byte{})
			}
			row[pos] = op[2]
		}
	}

	s.rows[id] = row
	return &wire.Response{Data: [][]interface{}{row}}
}

func opCode(v interface{}) byte {
	switch s := v.(type) {
	case string:
		if len(s) > 0 {
			return s[0]
		}
	case []byte:
		if len(s) > 0 {
			return s[0]
		}
	}
	return 0
}

func asUint32Field(v interface{}) uint32 {
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

func asUint32Bytes(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func addNum(cur, delta interface{}) interface{} {
	cb, _ := cur.([]byte)
	db, _ := delta.([]byte)
	return toLEBytes(asUint32Bytes(cb) + asUint32Bytes(db))
}

func subNum(cur, delta interface{}) interface{} {
	cb, _ := cur.([]byte)
	db, _ := delta.([]byte)
	return toLEBytes(asUint32Bytes(cb) - asUint32Bytes(db))
}

func bitwise(op byte, cur, mask interface{}) interface{} {
	cb, _ := cur.([]byte)
	mb, _ := mask.([]byte)
	a, b := asUint32Bytes(cb), asUint32Bytes(mb)
	switch op {
	case wire.UpdateAnd:
		return toLEBytes(a & b)
	case wire.UpdateOr:
		return toLEBytes(a | b)
	case wire.UpdateXor:
		return toLEBytes(a ^ b)
	}
	return cur
}

func toLEBytes(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// splice replaces count bytes of cur starting at offset with insert,
// clamping offset/offset+count to len(cur) the way a byte-range splice past
// the end of a short field degrades into a plain append.
func splice(cur interface{}, offset, count uint32, insert interface{}) []byte {
	cb, _ := cur.([]byte)
	ib, _ := insert.([]byte)

	if int(offset) > len(cb) {
		offset = uint32(len(cb))
	}
	end := offset + count
	if int(end) > len(cb) {
		end = uint32(len(cb))
	}

	out := make([]byte, 0, len(cb)-int(end-offset)+len(ib))
	out = append(out, cb[:offset]...)
	out = append(out, ib...)
	out = append(out, cb[end:]...)
	return out
}

func dialClient(h testserver.Handler) (*testserver.Server, *tupledb.Client) {
	srv, err := testserver.New(h)
	Expect(err).NotTo(HaveOccurred())

	host, port, err := splitHostPort(srv.Addr())
	Expect(err).NotTo(HaveOccurred())

	cfg := tupledb.DefaultConfig()
	cfg.Host = host
	cfg.Port = port

	c, err := tupledb.New(cfg, nil)
	Expect(err).NotTo(HaveOccurred())
	Expect(c.Connect(context.Background())).To(Succeed())

	return srv, c
}

var _ = Describe("Client", func() {
	var (
		srv *testserver.Server
		c   *tupledb.Client
	)

	AfterEach(func() {
		if c != nil {
			_ = c.Close()
		}
		if srv != nil {
			_ = srv.Close()
		}
	})

	It("pings and gets back an empty envelope", func() {
		srv, c = dialClient(func(req *wire.Request) *wire.Response {
			return &wire.Response{}
		})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		fut, err := c.Ping(ctx)
		Expect(err).NotTo(HaveOccurred())
		_, err = fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports a duplicate key as a server error on the second insert", func() {
		store := newFakeStore(1)
		srv, c = dialClient(store.handler)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		space := tupledb.Named("users")

		fut, err := c.Insert(ctx, space, []interface{}{uint32(1), "alice"})
		Expect(err).NotTo(HaveOccurred())
		_, err = fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())

		fut, err = c.Insert(ctx, space, []interface{}{uint32(1), "bob"})
		Expect(err).NotTo(HaveOccurred())
		_, err = fut.Get(ctx)
		Expect(err).To(HaveOccurred())
		Expect(fut.Response().Code & wire.ErrFlag).NotTo(BeZero())
		Expect(wire.ErrorName(fut.Response().Code)).To(Equal("ER_TUPLE_FOUND"))
	})

	It("selects a window of rows honoring offset and limit", func() {
		store := newFakeStore(1)
		srv, c = dialClient(store.handler)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		space := tupledb.Named("users")
		for i := uint32(0); i < 5; i++ {
			fut, err := c.Insert(ctx, space, []interface{}{i, "u"})
			Expect(err).NotTo(HaveOccurred())
			_, err = fut.Get(ctx)
			Expect(err).NotTo(HaveOccurred())
		}

		fut, err := c.Select(ctx, space, tupledb.IndexPrimary, nil, tupledb.SelectOptions{Offset: 2, Limit: 2})
		Expect(err).NotTo(HaveOccurred())
		tuple, err := fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(tuple).NotTo(BeNil())
		Expect(tuple.Next()).NotTo(BeNil())
		Expect(tuple.Next().Next()).To(BeNil())
	})

	It("codes a secondary index's key by the index's own field list, not the space's prefix", func() {
		store := newFakeStore(1)
		srv, c = dialClient(store.handler)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		space := tupledb.Named("users")
		fut, err := c.Insert(ctx, space, []interface{}{uint32(1), "alice", uint32(0)})
		Expect(err).NotTo(HaveOccurred())
		_, err = fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())

		// by_name's sole field is the space's position 1 (UTF8STR); coding
		// this key against the space's position 0 (NUM, the id field)
		// instead would fail to encode a string at all.
		fut, err = c.Select(ctx, space, tupledb.IndexByName("by_name"), []interface{}{"alice"}, tupledb.SelectOptions{})
		Expect(err).NotTo(HaveOccurred())
		tuple, err := fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(tuple).NotTo(BeNil())

		name, ok := tuple.GetNamed("name")
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("alice"))
	})

	It("applies splice, delete and insert ops to a field", func() {
		store := newFakeStore(1)
		srv, c = dialClient(store.handler)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		space := tupledb.Named("users")
		fut, err := c.Insert(ctx, space, []interface{}{uint32(1), "alice", uint32(4567)})
		Expect(err).NotTo(HaveOccurred())
		_, err = fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())

		// (1,set,"abcdef"), (1,substr,2,2), (1,substr,100,1,"tail"),
		// (2,delete), (2,insert,u32le(123)), (3,insert,"third"),
		// (4,insert,"fourth") -> field1="abeftail", field2=123, field3=
		// "third", field4="fourth".
		fut, err = c.Update(ctx, space, tupledb.IndexPrimary, []interface{}{uint32(1)},
			[]tupledb.UpdateOp{
				tupledb.Set(tupledb.FieldByName("name"), "abcdef"),
				tupledb.Splice(tupledb.FieldByName("name"), 2, 2, ""),
				tupledb.Splice(tupledb.FieldByName("name"), 100, 1, "tail"),
				tupledb.ListDelete(tupledb.FieldByPos(2)),
				tupledb.ListInsert(tupledb.FieldByPos(2), uint32(123)),
				tupledb.ListInsert(tupledb.FieldByPos(3), "third"),
				tupledb.ListInsert(tupledb.FieldByPos(4), "fourth"),
			})
		Expect(err).NotTo(HaveOccurred())
		tuple, err := fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())

		name, ok := tuple.GetNamed("name")
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("abeftail"))
		Expect(tuple.Get(2)).To(Equal(uint32(123)))
		Expect(tuple.Get(3)).To(Equal([]byte("third")))
		Expect(tuple.Get(4)).To(Equal([]byte("fourth")))
	})

	It("applies arithmetic and bitwise ops to a numeric field", func() {
		store := newFakeStore(1)
		srv, c = dialClient(store.handler)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		space := tupledb.Named("users")
		fut, err := c.Insert(ctx, space, []interface{}{uint32(1), "alice", uint32(4567)})
		Expect(err).NotTo(HaveOccurred())
		_, err = fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())

		fut, err = c.Update(ctx, space, tupledb.IndexPrimary, []interface{}{uint32(1)},
			[]tupledb.UpdateOp{
				tupledb.Add(tupledb.FieldByPos(0), uint32(9)),
				tupledb.Or(tupledb.FieldByPos(2), uint32(23)),
				tupledb.And(tupledb.FieldByPos(2), uint32(345)),
			})
		Expect(err).NotTo(HaveOccurred())
		tuple, err := fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(tuple.Get(0)).To(Equal(uint32(10)))
		Expect(tuple.Get(2)).To(Equal(uint32((4567 | 23) & 345)))
	})

	It("invalidates the cache and retries exactly once on a stale schema", func() {
		store := newFakeStore(1)
		store.staleOnce = true
		srv, c = dialClient(store.handler)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		space := tupledb.Named("users")
		fut, err := c.Insert(ctx, space, []interface{}{uint32(1), "alice"})
		Expect(err).NotTo(HaveOccurred())
		_, err = fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())

		fut, err = c.Select(ctx, space, tupledb.IndexPrimary, []interface{}{uint32(1)}, tupledb.SelectOptions{})
		Expect(err).NotTo(HaveOccurred())
		tuple, err := fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(tuple).NotTo(BeNil())
	})

	It("surfaces an error when the schema is still stale after the one retry", func() {
		store := newFakeStore(1)
		store.staleAlways = true
		srv, c = dialClient(store.handler)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		space := tupledb.Named("users")
		fut, err := c.Select(ctx, space, tupledb.IndexPrimary, []interface{}{uint32(1)}, tupledb.SelectOptions{})
		Expect(err).NotTo(HaveOccurred())
		_, err = fut.Get(ctx)
		Expect(err).To(HaveOccurred())
		Expect(wire.ErrorName(fut.Response().Code)).To(Equal("ER_WRONG_SCHEMA_VERSION"))
	})
})
