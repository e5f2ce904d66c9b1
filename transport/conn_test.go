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

package transport_test

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github/sabouaram/tupledb/internal/testserver"
	"github/sabouaram/tupledb/internal/wire"
	"github/sabouaram/tupledb/transport"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func dialPair(h testserver.Handler) (*testserver.Server, *transport.Conn) {
	srv, err := testserver.New(h)
	Expect(err).NotTo(HaveOccurred())

	host, portStr, err := splitHostPort(srv.Addr())
	Expect(err).NotTo(HaveOccurred())

	cfg := transport.DefaultConfig()
	cfg.Host = host
	cfg.Port = portStr

	c := transport.New(cfg, nil)
	Expect(c.Connect(context.Background())).To(Succeed())

	return srv, c
}

func splitHostPort(addr string) (string, int, error) {
	idx := strings.LastIndex(addr, ":")
	host := addr[:idx]
	port, err := strconv.Atoi(addr[idx+1:])
	return host, port, err
}

var _ = Describe("Conn", func() {
	var (
		srv *testserver.Server
		c   *transport.Conn
	)

	AfterEach(func() {
		if c != nil {
			_ = c.Close()
		}
		if srv != nil {
			_ = srv.Close()
		}
	})

	It("completes ping with a success envelope", func() {
		srv, c = dialPair(func(req *wire.Request) *wire.Response {
			Expect(req.Code).To(Equal(wire.ReqPing))
			return &wire.Response{Code: 0}
		})

		fut, err := c.Send(&wire.Request{Code: wire.ReqPing, Body: map[int]interface{}{}})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		resp, err := fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Ok()).To(BeTrue())
	})

	It("completes exactly once per request id", func() {
		srv, c = dialPair(func(req *wire.Request) *wire.Response {
			return &wire.Response{Code: 0}
		})

		futs := make([]*transport.Future, 5)
		for i := range futs {
			f, err := c.Send(&wire.Request{Code: wire.ReqPing, Body: map[int]interface{}{}})
			Expect(err).NotTo(HaveOccurred())
			futs[i] = f
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for _, f := range futs {
			_, err := f.Get(ctx)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("fails every pending future with CONNECTION_LOST on disconnect", func() {
		srv, c = dialPair(func(req *wire.Request) *wire.Response {
			// never reply: force the caller to observe disconnect, not a timeout
			return nil
		})

		cfgFut, err := c.Send(&wire.Request{Code: wire.ReqPing, Body: map[int]interface{}{}})
		Expect(err).NotTo(HaveOccurred())

		Expect(srv.Close()).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err = cfgFut.Get(ctx)
		Expect(err).To(HaveOccurred())
	})

	It("surfaces a server error without tearing down the connection", func() {
		srv, c = dialPair(func(req *wire.Request) *wire.Response {
			return &wire.Response{
				Code:  wire.ErrFlag | wire.ErrTupleFound,
				Error: "duplicate key: already exists",
			}
		})

		fut, err := c.Send(&wire.Request{Code: wire.ReqInsert, Body: map[int]interface{}{}})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		resp, err := fut.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Ok()).To(BeFalse())
		Expect(wire.ErrorName(resp.Code)).To(Equal("ER_TUPLE_FOUND"))
		Expect(resp.Error).To(ContainSubstring("already exists"))

		Expect(c.State()).To(Equal(transport.StateReady))
	})
})
