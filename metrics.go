/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

  Licensed under the Apache License, Version 2.0 (the "License");
  you may not use this file except in compliance with the License.
  You may obtain a copy of the License at

      http://www.apache.org/licenses/LICENSE-2.0

  Unless required by applicable law or agreed to in writing, software
  distributed under the License is distributed on an "AS IS" BASIS,
  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
  See the License for the specific language governing permissions and
  limitations under the License.

*/

package tuid

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics of generators. The nil value is valid and collects nothing.
type Metrics struct {
	Generated    *prometheus.CounterVec
	LockTimeouts prometheus.Counter
	Recoveries   prometheus.Counter
	ClockWaits   prometheus.Counter
	Hold         prometheus.Histogram
	BufferDepth  *prometheus.GaugeVec
}

// NewMetrics creates collectors and registers them, if registerer is given
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tuid",
				Name:      "generated_total",
				Help:      "Identifiers derived by generators, buffered sources count their pre-fill.",
			},
			[]string{"source"},
		),
		LockTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tuid",
			Name:      "lock_timeouts_total",
			Help:      "State lock acquisitions that missed the deadline.",
		}),
		Recoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tuid",
			Name:      "state_recoveries_total",
			Help:      "Corrupted state records replaced by fresh state.",
		}),
		ClockWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tuid",
			Name:      "clock_waits_total",
			Help:      "Waits for the next millisecond after tick exhaustion.",
		}),
		Hold: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tuid",
			Name:      "hold_seconds",
			Help:      "Latency of state lock acquisition.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		BufferDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "tuid",
				Name:      "buffer_depth",
				Help:      "Identifiers waiting in the buffer.",
			},
			[]string{"source"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.Generated,
			m.LockTimeouts,
			m.Recoveries,
			m.ClockWaits,
			m.Hold,
			m.BufferDepth,
		)
	}

	return m
}

func (m *Metrics) generated(source string, n int) {
	if m != nil {
		m.Generated.WithLabelValues(source).Add(float64(n))
	}
}

func (m *Metrics) lockTimeout() {
	if m != nil {
		m.LockTimeouts.Inc()
	}
}

func (m *Metrics) recovered() {
	if m != nil {
		m.Recoveries.Inc()
	}
}

func (m *Metrics) clockWait() {
	if m != nil {
		m.ClockWaits.Inc()
	}
}

func (m *Metrics) held(d time.Duration) {
	if m != nil {
		m.Hold.Observe(d.Seconds())
	}
}

func (m *Metrics) depth(source string, n int) {
	if m != nil {
		m.BufferDepth.WithLabelValues(source).Set(float64(n))
	}
}
