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

package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-uuid"
	hcversion "github.com/hashicorp/go-version"
	"golang.org/x/net/proxy"

	liberr "github/sabouaram/tupledb/errors"
	"github/sabouaram/tupledb/internal/wire"
	"github/sabouaram/tupledb/logger"
	"github/sabouaram/tupledb/monitor"
)

// Conn is one TCP connection to the server: a single write-serializing
// goroutine, a single read-demultiplexing goroutine, and a pending-request
// table the two communicate through. Exported methods are safe to call from
// any goroutine.
type Conn struct {
	cfg Config
	log *logger.Logger

	id string // per-connection correlation id, for logging/metrics labels

	mu      sync.Mutex
	state   State
	netConn net.Conn
	version *hcversion.Version

	pending *pendingTable
	sendCh  chan []byte
	syncID  uint32

	reconnectTimer *time.Timer
	closed         bool
	stopLoops      chan struct{}

	metrics *monitor.Metrics
}

// UseMetrics attaches m as the connection's Prometheus sink. Safe to call
// before Connect; nil detaches metrics again. Not safe to call concurrently
// with Connect/Close.
func (c *Conn) UseMetrics(m *monitor.Metrics) {
	c.mu.Lock()
	c.metrics = m
	c.mu.Unlock()
}

// New creates a Conn in the IDLE state. Call Connect to dial.
func New(cfg Config, log *logger.Logger) *Conn {
	id, err := uuid.GenerateUUID()
	if err != nil {
		id = "unidentified"
	}

	return &Conn{
		cfg:     cfg,
		log:     log.With(map[string]interface{}{"conn": id}),
		id:      id,
		state:   StateIdle,
		pending: newPendingTable(),
		sendCh:  make(chan []byte, 64),
	}
}

// State returns the connection's current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) setState(s State) {
	c.mu.Lock()
	c.state = s
	m := c.metrics
	c.mu.Unlock()
	m.SetState(c.id, uint8(s))
	c.log.Debug(fmt.Sprintf("state -> %s", s))
}

// Connect dials the server, completes the greeting and optional auth
// handshake, and starts the read/write loops. It makes up to
// cfg.ConnectAttempts attempts in all before giving up, unless ReconnectAlways
// keeps the reconnect timer running afterward.
func (c *Conn) Connect(ctx context.Context) error {
	attempts := c.cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := c.dialOnce(ctx); err != nil {
			lastErr = err
			c.log.Warn(fmt.Sprintf("connect attempt %d/%d failed: %v", i+1, attempts, err))
			if liberr.IsCode(err, ErrorAuthFailed) {
				// Rejected credentials are not a transient dial failure: retrying
				// them against a server that just revoked them risks a lockout,
				// so neither the attempt loop nor the reconnect timer runs again.
				break
			}
			continue
		}
		return nil
	}

	if liberr.IsCode(lastErr, ErrorAuthFailed) {
		return lastErr
	}

	if c.cfg.ReconnectAlways && c.cfg.ReconnectPeriod > 0 {
		c.scheduleReconnect()
		return nil
	}

	return liberr.NewErrorTrace(ErrorConnectFailed.Int(), ErrorConnectFailed.Message(), "", 0, lastErr)
}

func (c *Conn) dialOnce(ctx context.Context) error {
	c.setState(StateConnecting)

	dctx, cancel := c.cfg.dialContext(ctx)
	defer cancel()

	nc, err := c.dial(dctx)
	if err != nil {
		c.setState(StateIdle)
		return err
	}

	// One reader for the connection's whole lifetime: a frame half-read by
	// the auth step must stay buffered for the read loop, not be lost in a
	// second reader's buffer.
	rd := bufio.NewReader(nc)

	c.setState(StateGreeting)
	version, salt, err := parseGreeting(rd)
	if err != nil {
		_ = nc.Close()
		c.setState(StateIdle)
		return err
	}

	if v, verr := hcversion.NewVersion(version); verr == nil {
		c.mu.Lock()
		c.version = v
		c.mu.Unlock()
	}

	if c.cfg.User != "" {
		c.setState(StateAuth)
		if err = c.authenticate(nc, rd, salt); err != nil {
			_ = nc.Close()
			c.setState(StateIdle)
			return liberr.NewErrorTrace(ErrorAuthFailed.Int(), ErrorAuthFailed.Message(), "", 0, err)
		}
	}

	c.mu.Lock()
	c.netConn = nc
	c.closed = false
	c.stopLoops = make(chan struct{})
	stop := c.stopLoops
	c.mu.Unlock()

	c.setState(StateReady)

	go c.writeLoop(nc, stop)
	go c.readLoop(rd, stop)

	if c.cfg.Hooks.Connected != nil {
		go c.cfg.Hooks.Connected(version)
	}

	return nil
}

func (c *Conn) dial(ctx context.Context) (net.Conn, error) {
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	if c.cfg.ProxyURL == "" {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", addr)
	}

	dialer, err := proxy.SOCKS5("tcp", c.cfg.ProxyURL, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("transport: build socks5 dialer: %w", err)
	}

	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", addr)
	}
	return dialer.Dial("tcp", addr)
}

func (c *Conn) authenticate(nc net.Conn, rd *bufio.Reader, salt []byte) error {
	token := scramble(c.cfg.Password, salt)

	req := &wire.Request{
		Code: wire.ReqAuth,
		Sync: c.nextSyncID(),
		Body: map[int]interface{}{
			wire.KeyFunction: c.cfg.User,
			wire.KeyKey:      token,
		},
	}

	framed, err := wire.Encode(req)
	if err != nil {
		return err
	}
	if _, err = nc.Write(framed); err != nil {
		return err
	}

	resp, err := wire.ReadFrame(rd)
	if err != nil {
		return err
	}
	if !resp.Ok() {
		return fmt.Errorf("auth rejected: %s", resp.Error)
	}
	return nil
}

func (c *Conn) nextSyncID() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		c.syncID++
		id := c.syncID
		if _, exists := c.pending.m.Load(id); !exists {
			return id
		}
	}
}

// Send enqueues req for writing and returns a Future for its reply. Send
// never blocks on I/O; it fails synchronously if the connection is not
// READY or the pending table is at MaxPending.
func (c *Conn) Send(req *wire.Request) (*Future, error) {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return nil, ErrorNotConnected.Error()
	}
	if c.cfg.MaxPending > 0 && c.pending.len() >= c.cfg.MaxPending {
		c.mu.Unlock()
		return nil, ErrorTooManyPending.Error()
	}
	req.Sync = c.nextSyncIDLocked()
	c.mu.Unlock()

	framed, err := wire.Encode(req)
	if err != nil {
		return nil, liberr.NewErrorTrace(ErrorProtocol.Int(), ErrorProtocol.Message(), "", 0, err)
	}

	future := newFuture()
	entry := &pendingEntry{issued: time.Now(), future: future}

	if c.cfg.RequestTimeout > 0 {
		id := req.Sync
		entry.timer = time.AfterFunc(c.cfg.RequestTimeout, func() {
			if e, ok := c.pending.takeOnTimeout(id, entry); ok {
				c.metrics.SetPending(c.id, c.pending.len())
				e.future.complete(nil, ErrorRequestTimeout.Error())
			}
		})
	}

	c.pending.add(req.Sync, entry)
	c.metrics.SetPending(c.id, c.pending.len())
	c.sendCh <- framed

	return future, nil
}

func (c *Conn) nextSyncIDLocked() uint32 {
	for {
		c.syncID++
		id := c.syncID
		if _, exists := c.pending.m.Load(id); !exists {
			return id
		}
	}
}

func (c *Conn) writeLoop(nc net.Conn, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case frame := <-c.sendCh:
			if _, err := nc.Write(frame); err != nil {
				c.fail(err)
				return
			}
		}
	}
}

func (c *Conn) readLoop(r *bufio.Reader, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		resp, err := wire.ReadFrame(r)
		if err != nil {
			c.fail(err)
			return
		}

		entry, ok := c.pending.takeOnReply(resp.Sync)
		if !ok {
			c.log.Warn(fmt.Sprintf("reply for unknown sync id %d, dropped", resp.Sync))
			continue
		}
		c.metrics.SetPending(c.id, c.pending.len())
		entry.future.complete(resp, nil)
	}
}

// fail transitions the connection to BROKEN, drains every pending request
// with CONNECTION_LOST, and schedules a reconnect if configured.
func (c *Conn) fail(cause error) {
	c.mu.Lock()
	if c.state == StateBroken || c.closed {
		c.mu.Unlock()
		return
	}
	c.state = StateBroken
	nc := c.netConn
	c.netConn = nil
	if c.stopLoops != nil {
		close(c.stopLoops)
		c.stopLoops = nil
	}
	c.mu.Unlock()

	if nc != nil {
		_ = nc.Close()
	}

	lost := liberr.NewErrorTrace(ErrorConnectionLost.Int(), ErrorConnectionLost.Message(), "", 0, cause)
	c.pending.drain(lost)
	c.drainSendQueue()
	c.metrics.SetPending(c.id, 0)

	c.log.Error(fmt.Sprintf("connection lost: %v", cause))

	if c.cfg.Hooks.Disconnected != nil {
		go c.cfg.Hooks.Disconnected(lost)
	}

	if c.cfg.ReconnectPeriod > 0 {
		c.scheduleReconnect()
	}
}

func (c *Conn) scheduleReconnect() {
	c.mu.Lock()
	if c.reconnectTimer != nil {
		c.mu.Unlock()
		return
	}
	c.reconnectTimer = time.AfterFunc(c.cfg.ReconnectPeriod, func() {
		c.mu.Lock()
		c.reconnectTimer = nil
		c.mu.Unlock()
		c.metrics.IncReconnect(c.id)
		if err := c.dialOnce(context.Background()); err != nil {
			c.log.Warn(fmt.Sprintf("reconnect failed: %v", err))
			if c.cfg.ReconnectPeriod > 0 && !liberr.IsCode(err, ErrorAuthFailed) {
				c.scheduleReconnect()
			}
		}
	})
	c.mu.Unlock()
}

// Close tears down the connection permanently: stops any reconnect timer,
// closes the socket, and drains the pending table. Safe to call more than
// once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	nc := c.netConn
	c.netConn = nil
	if c.stopLoops != nil {
		close(c.stopLoops)
		c.stopLoops = nil
	}
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.state = StateIdle
	c.mu.Unlock()

	var agg *multierror.Error
	if nc != nil {
		if err := nc.Close(); err != nil {
			agg = multierror.Append(agg, err)
		}
	}

	c.pending.drain(ErrorConnectionLost.Error())
	c.drainSendQueue()
	c.metrics.SetPending(c.id, 0)

	return agg.ErrorOrNil()
}

// drainSendQueue discards frames accepted before a teardown but never
// written. Their requests were already failed out of the pending table, so
// writing the bytes on the next connection would make the server execute
// work nobody is waiting for.
func (c *Conn) drainSendQueue() {
	for {
		select {
		case <-c.sendCh:
		default:
			return
		}
	}
}

// ServerVersion returns the parsed version string from the greeting of the
// most recent successful connect, or nil if unknown.
func (c *Conn) ServerVersion() *hcversion.Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}
