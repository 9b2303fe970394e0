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

package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics exposes a gauge of open connections, a gauge of listener state,
// and a counter of dispatched calls per method, grounded on the teacher's
// socket/server/tcp test suite asserting OpenConnections() (spec_full §1
// "server/metrics.go").
type metrics struct {
	once sync.Once

	openConns  prometheus.Gauge
	listening  prometheus.Gauge
	dispatched *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		openConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "govarlink",
			Subsystem: "server",
			Name:      "open_connections",
			Help:      "Number of currently accepted connections.",
		}),
		listening: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "govarlink",
			Subsystem: "server",
			Name:      "listening",
			Help:      "1 if the service is currently listening, 0 otherwise.",
		}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "govarlink",
			Subsystem: "server",
			Name:      "calls_dispatched_total",
			Help:      "Number of calls dispatched to a registered handler, by qualified method name.",
		}, []string{"method"}),
	}
	return m
}

// Collectors returns the metric collectors for registration against a
// prometheus.Registerer of the caller's choosing.
func (m *metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.openConns, m.listening, m.dispatched}
}

func (m *metrics) connOpened() { m.openConns.Inc() }
func (m *metrics) connClosed() { m.openConns.Dec() }
func (m *metrics) setListening(v float64) { m.listening.Set(v) }
func (m *metrics) callDispatched(method string) { m.dispatched.WithLabelValues(method).Inc() }

// Metrics exposes the service's prometheus collectors so the embedding
// application can register them against its own registry.
func (s *Service) Metrics() []prometheus.Collector {
	return s.metrics.Collectors()
}
