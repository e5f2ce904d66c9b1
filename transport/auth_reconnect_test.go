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
	"time"

	"github/sabouaram/tupledb/internal/testserver"
	"github/sabouaram/tupledb/internal/wire"
	"github/sabouaram/tupledb/transport"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Auth", func() {
	var srv *testserver.Server

	AfterEach(func() {
		if srv != nil {
			_ = srv.Close()
		}
	})

	It("is terminal: a rejected credential does not trigger an automatic reconnect", func() {
		var err error
		srv, err = testserver.New(func(req *wire.Request) *wire.Response {
			return &wire.Response{Code: 0}
		})
		Expect(err).NotTo(HaveOccurred())
		srv.RequireUser = "alice"

		host, port, err := splitHostPort(srv.Addr())
		Expect(err).NotTo(HaveOccurred())

		cfg := transport.DefaultConfig()
		cfg.Host = host
		cfg.Port = port
		cfg.User = "mallory"
		cfg.Password = "wrong"
		cfg.ReconnectPeriod = 20 * time.Millisecond
		cfg.ReconnectAlways = true

		c := transport.New(cfg, nil)
		defer c.Close()

		err = c.Connect(context.Background())
		Expect(err).To(HaveOccurred())

		// Give a would-be reconnect loop a chance to run; the connection must
		// stay in a non-ready state since the rejection was on credentials,
		// not a transient network failure.
		time.Sleep(100 * time.Millisecond)
		Expect(c.State()).NotTo(Equal(transport.StateReady))
	})

	It("succeeds when the username and a scramble are accepted", func() {
		var err error
		srv, err = testserver.New(func(req *wire.Request) *wire.Response {
			return &wire.Response{Code: 0}
		})
		Expect(err).NotTo(HaveOccurred())
		srv.RequireUser = "alice"

		host, port, err := splitHostPort(srv.Addr())
		Expect(err).NotTo(HaveOccurred())

		cfg := transport.DefaultConfig()
		cfg.Host = host
		cfg.Port = port
		cfg.User = "alice"
		cfg.Password = "s3cr3t"

		c := transport.New(cfg, nil)
		defer c.Close()

		Expect(c.Connect(context.Background())).To(Succeed())
		Expect(c.State()).To(Equal(transport.StateReady))
	})
})

var _ = Describe("request timeout", func() {
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

	It("completes the future with a timeout error if the server never replies", func() {
		var err error
		srv, err = testserver.New(func(req *wire.Request) *wire.Response {
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		host, port, err := splitHostPort(srv.Addr())
		Expect(err).NotTo(HaveOccurred())

		cfg := transport.DefaultConfig()
		cfg.Host = host
		cfg.Port = port
		cfg.RequestTimeout = 50 * time.Millisecond

		c = transport.New(cfg, nil)
		Expect(c.Connect(context.Background())).To(Succeed())

		fut, err := c.Send(&wire.Request{Code: wire.ReqPing, Body: map[int]interface{}{}})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err = fut.Get(ctx)
		Expect(err).To(HaveOccurred())
	})

	It("rejects new sends once MaxPending is reached", func() {
		var err error
		srv, err = testserver.New(func(req *wire.Request) *wire.Response {
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		host, port, err := splitHostPort(srv.Addr())
		Expect(err).NotTo(HaveOccurred())

		cfg := transport.DefaultConfig()
		cfg.Host = host
		cfg.Port = port
		cfg.MaxPending = 1

		c = transport.New(cfg, nil)
		Expect(c.Connect(context.Background())).To(Succeed())

		_, err = c.Send(&wire.Request{Code: wire.ReqPing, Body: map[int]interface{}{}})
		Expect(err).NotTo(HaveOccurred())

		_, err = c.Send(&wire.Request{Code: wire.ReqPing, Body: map[int]interface{}{}})
		Expect(err).To(HaveOccurred())
	})
})
