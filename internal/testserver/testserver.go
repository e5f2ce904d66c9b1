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

// Package testserver is an in-process fake speaking just enough of the wire
// protocol (greeting, auth, and a pluggable per-request Handler) to drive
// transport/schema/client tests without a real server binary.
package testserver

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"net"
	"sync"

	"github/sabouaram/tupledb/internal/wire"
)

// Handler answers one decoded request with a response, or nil to swallow
// the request without replying (e.g. to let a test observe a timeout or a
// disconnect instead). The sync id is filled in by the server after the
// handler returns.
type Handler func(req *wire.Request) *wire.Response

// Server is a single-listener fake tuple store.
type Server struct {
	ln      net.Listener
	Version string
	Salt    []byte

	mu      sync.Mutex
	handler Handler

	// RequireUser, when non-empty, makes the fake server reject any other
	// username during the auth handshake.
	RequireUser string
}

// New starts listening on an ephemeral loopback port.
func New(h Handler) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	salt := make([]byte, 32)
	_, _ = rand.Read(salt)

	s := &Server{
		ln:      ln,
		Version: "2.11.0 (fake)",
		Salt:    salt,
		handler: h,
	}

	go s.acceptLoop()
	return s, nil
}

// Addr is the "host:port" string to dial.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// SetHandler swaps the per-request handler, e.g. mid-test to simulate a
// schema change between two calls.
func (s *Server) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *Server) currentHandler() Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.ln.Close()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	if err := s.writeGreeting(conn); err != nil {
		return
	}

	r := bufio.NewReader(conn)
	for {
		req, err := wire.ReadRequestFrame(r)
		if err != nil {
			return
		}

		var resp *wire.Response
		if req.Code == wire.ReqAuth {
			resp = s.handleAuth(req)
		} else {
			resp = s.currentHandler()(req)
		}
		if resp == nil {
			continue
		}
		resp.Sync = req.Sync

		framed, err := wire.EncodeResponse(resp)
		if err != nil {
			return
		}
		if _, err = conn.Write(framed); err != nil {
			return
		}
	}
}

func (s *Server) writeGreeting(conn net.Conn) error {
	buf := make([]byte, 128)
	copy(buf[:64], []byte(s.Version))
	encoded := base64.StdEncoding.EncodeToString(s.Salt)
	copy(buf[64:128], []byte(encoded))
	_, err := conn.Write(buf)
	return err
}

func (s *Server) handleAuth(req *wire.Request) *wire.Response {
	if s.RequireUser == "" {
		return &wire.Response{}
	}

	user, _ := req.Body[wire.KeyFunction].(string)
	if user != s.RequireUser {
		return &wire.Response{Code: wire.ErrFlag | wire.ErrAuthFailed, Error: "unknown user"}
	}

	// The fake server does not re-derive the scramble; it only checks that
	// some token was supplied, since the point under test is the handshake
	// sequencing, not cryptographic correctness of a from-scratch server.
	if _, ok := req.Body[wire.KeyKey].([]byte); !ok {
		return &wire.Response{Code: wire.ErrFlag | wire.ErrAuthFailed, Error: "missing scramble"}
	}

	return &wire.Response{}
}
