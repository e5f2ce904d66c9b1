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

package monitor_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github/sabouaram/tupledb/monitor"
)

var _ = Describe("Metrics", func() {
	var m *monitor.Metrics

	BeforeEach(func() {
		m = monitor.New()
	})

	It("registers every collector exactly once", func() {
		reg := prometheus.NewRegistry()
		Expect(m.Register(reg)).To(Succeed())
		Expect(m.Register(reg)).To(Succeed(), "a second Register must tolerate AlreadyRegisteredError")
	})

	It("tracks connection state and pending depth as gauges", func() {
		reg := prometheus.NewRegistry()
		Expect(m.Register(reg)).To(Succeed())

		m.SetState("conn-1", 4)
		m.SetPending("conn-1", 3)

		Expect(testutil.ToFloat64(m.StateGauge("conn-1"))).To(Equal(4.0))
		Expect(testutil.ToFloat64(m.PendingGauge("conn-1"))).To(Equal(3.0))

		m.SetPending("conn-1", 0)
		Expect(testutil.ToFloat64(m.PendingGauge("conn-1"))).To(Equal(0.0))
	})

	It("counts reconnects per connection", func() {
		reg := prometheus.NewRegistry()
		Expect(m.Register(reg)).To(Succeed())

		m.IncReconnect("conn-1")
		m.IncReconnect("conn-1")
		m.IncReconnect("conn-2")

		Expect(testutil.ToFloat64(m.ReconnectCounter("conn-1"))).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.ReconnectCounter("conn-2"))).To(Equal(1.0))
	})

	It("splits request outcomes by operation and result", func() {
		reg := prometheus.NewRegistry()
		Expect(m.Register(reg)).To(Succeed())

		m.ObserveRequest("insert", true)
		m.ObserveRequest("insert", true)
		m.ObserveRequest("insert", false)

		Expect(testutil.ToFloat64(m.RequestCounter("insert", "ok"))).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.RequestCounter("insert", "error"))).To(Equal(1.0))
	})

	It("is safe to call on a nil receiver", func() {
		var nilMetrics *monitor.Metrics
		Expect(func() {
			nilMetrics.SetState("x", 1)
			nilMetrics.SetPending("x", 1)
			nilMetrics.IncReconnect("x")
			nilMetrics.ObserveRequest("op", true)
		}).ToNot(Panic())
		Expect(nilMetrics.Register(prometheus.NewRegistry())).To(Succeed())
	})
})
