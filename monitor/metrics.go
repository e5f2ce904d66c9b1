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

// Package monitor exposes the client's connection health as Prometheus
// collectors: the current lifecycle state per connection, counts of
// reconnect attempts, and the depth of the pending-request table. None of
// this is consulted by the protocol itself; it exists purely so an
// embedding application can scrape it.
package monitor

import "github.com/prometheus/client_golang/prometheus"

// Metrics is a small, independent collector set. A nil *Metrics is valid
// everywhere it's used as a sink: every method is a no-op on a nil receiver,
// so wiring it into transport.Conn stays optional.
type Metrics struct {
	state      *prometheus.GaugeVec
	reconnects *prometheus.CounterVec
	pending    *prometheus.GaugeVec
	requests   *prometheus.CounterVec
}

// New builds an unregistered Metrics instance. Call Register to expose it.
func New() *Metrics {
	return &Metrics{
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tupledb",
			Subsystem: "transport",
			Name:      "connection_state",
			Help:      "Current lifecycle state of a connection (0=idle,1=connecting,2=greeting,3=auth,4=ready,5=broken).",
		}, []string{"conn"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tupledb",
			Subsystem: "transport",
			Name:      "reconnects_total",
			Help:      "Reconnect attempts made by a connection.",
		}, []string{"conn"}),
		pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tupledb",
			Subsystem: "transport",
			Name:      "pending_requests",
			Help:      "Requests currently awaiting a reply on a connection.",
		}, []string{"conn"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tupledb",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Completed high-level operations, by operation name and outcome.",
		}, []string{"op", "result"}),
	}
}

// Register adds every collector to reg. Pass nil to use the default
// Prometheus registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if m == nil {
		return nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{m.state, m.reconnects, m.pending, m.requests} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// SetState records conn's current lifecycle state as a numeric gauge.
func (m *Metrics) SetState(conn string, state uint8) {
	if m == nil {
		return
	}
	m.state.WithLabelValues(conn).Set(float64(state))
}

// IncReconnect counts one reconnect attempt by conn.
func (m *Metrics) IncReconnect(conn string) {
	if m == nil {
		return
	}
	m.reconnects.WithLabelValues(conn).Inc()
}

// SetPending records the current depth of conn's pending-request table.
func (m *Metrics) SetPending(conn string, n int) {
	if m == nil {
		return
	}
	m.pending.WithLabelValues(conn).Set(float64(n))
}

// ObserveRequest counts one completed high-level operation, op, by whether
// it succeeded.
func (m *Metrics) ObserveRequest(op string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.requests.WithLabelValues(op, result).Inc()
}

// StateGauge returns the per-connection state gauge, for tests and
// introspection that need the underlying prometheus.Metric.
func (m *Metrics) StateGauge(conn string) prometheus.Gauge {
	return m.state.WithLabelValues(conn)
}

// PendingGauge returns the per-connection pending-depth gauge.
func (m *Metrics) PendingGauge(conn string) prometheus.Gauge {
	return m.pending.WithLabelValues(conn)
}

// ReconnectCounter returns the per-connection reconnect counter.
func (m *Metrics) ReconnectCounter(conn string) prometheus.Counter {
	return m.reconnects.WithLabelValues(conn)
}

// RequestCounter returns the per-operation, per-result request counter.
func (m *Metrics) RequestCounter(op, result string) prometheus.Counter {
	return m.requests.WithLabelValues(op, result)
}
