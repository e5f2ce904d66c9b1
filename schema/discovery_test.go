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

package schema_test

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github/sabouaram/tupledb/internal/testserver"
	"github/sabouaram/tupledb/internal/wire"
	"github/sabouaram/tupledb/schema"
	"github/sabouaram/tupledb/transport"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func splitHostPort(addr string) (string, int, error) {
	idx := strings.LastIndex(addr, ":")
	host := addr[:idx]
	port, err := strconv.Atoi(addr[idx+1:])
	return host, port, err
}

func fakeMetadataHandler(schemaID uint32) testserver.Handler {
	return func(req *wire.Request) *wire.Response {
		switch req.Code {
		case wire.ReqPing:
			return &wire.Response{SchemaID: schemaID}

		case wire.ReqSelect:
			space := req.Uint32(wire.KeySpace)
			switch space {
			case wire.SpaceVSpace:
				return &wire.Response{Data: [][]interface{}{
					{uint32(0), uint32(0), "users", "memtx", uint32(3), map[int]interface{}{}, []interface{}{
						[]interface{}{"id", "NUM"},
						[]interface{}{"name", "STR"},
					}},
					{uint32(1), uint32(1), "_internal", "memtx", uint32(1), map[int]interface{}{}, []interface{}{}},
				}}
			case wire.SpaceVIndex:
				return &wire.Response{Data: [][]interface{}{
					{uint32(0), uint32(0), "primary", "tree", map[int]interface{}{}, []interface{}{
						[]interface{}{uint32(0), "NUM"},
					}},
				}}
			}
		}
		return &wire.Response{}
	}
}

func dialForDiscovery(h testserver.Handler) (*testserver.Server, *transport.Conn) {
	srv, err := testserver.New(h)
	Expect(err).NotTo(HaveOccurred())

	host, port, err := splitHostPort(srv.Addr())
	Expect(err).NotTo(HaveOccurred())

	cfg := transport.DefaultConfig()
	cfg.Host = host
	cfg.Port = port

	conn := transport.New(cfg, nil)
	Expect(conn.Connect(context.Background())).To(Succeed())

	return srv, conn
}

var _ = Describe("Discoverer", func() {
	var (
		srv  *testserver.Server
		conn *transport.Conn
	)

	AfterEach(func() {
		if conn != nil {
			_ = conn.Close()
		}
		if srv != nil {
			_ = srv.Close()
		}
	})

	It("populates the cache with discovered spaces and the current schema id", func() {
		srv, conn = dialForDiscovery(fakeMetadataHandler(7))

		cache := schema.NewCache()
		disc := schema.NewDiscoverer(conn, cache)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(disc.Ensure(ctx)).To(Succeed())

		Expect(cache.Valid()).To(BeTrue())
		Expect(cache.SchemaID()).To(Equal(uint32(7)))

		sp, ok := cache.ByName("users")
		Expect(ok).To(BeTrue())
		Expect(sp.ID).To(Equal(uint32(0)))
		Expect(sp.Fields).To(HaveLen(2))

		_, ok = cache.ByName("_internal")
		Expect(ok).To(BeFalse())

		idx, ok := sp.Indexes["primary"]
		Expect(ok).To(BeTrue())
		Expect(idx.Fields[0].Named).To(BeTrue())
		Expect(idx.Fields[0].Name).To(Equal("id"))
	})

	It("coalesces concurrent discovery calls into exactly one pair of selects", func() {
		var mu sync.Mutex
		selects := 0

		srv, conn = dialForDiscovery(func(req *wire.Request) *wire.Response {
			if req.Code == wire.ReqSelect {
				mu.Lock()
				selects++
				mu.Unlock()
			}
			return fakeMetadataHandler(1)(req)
		})

		cache := schema.NewCache()
		disc := schema.NewDiscoverer(conn, cache)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		done := make(chan error, 5)
		for i := 0; i < 5; i++ {
			go func() { done <- disc.Ensure(ctx) }()
		}
		for i := 0; i < 5; i++ {
			Expect(<-done).To(Succeed())
		}

		mu.Lock()
		defer mu.Unlock()
		Expect(selects).To(Equal(2))
	})

	It("re-runs discovery after Invalidate", func() {
		var mu sync.Mutex
		selects := 0

		srv, conn = dialForDiscovery(func(req *wire.Request) *wire.Response {
			if req.Code == wire.ReqSelect {
				mu.Lock()
				selects++
				mu.Unlock()
			}
			return fakeMetadataHandler(1)(req)
		})

		cache := schema.NewCache()
		disc := schema.NewDiscoverer(conn, cache)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		Expect(disc.Ensure(ctx)).To(Succeed())
		cache.Invalidate()
		Expect(cache.Valid()).To(BeFalse())
		Expect(disc.Ensure(ctx)).To(Succeed())
		Expect(cache.Valid()).To(BeTrue())

		mu.Lock()
		defer mu.Unlock()
		Expect(selects).To(Equal(4))
	})
})
