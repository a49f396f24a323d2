// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsAtelier holds Prometheus metrics for the Atelier client and tools.
type metricsAtelier struct {
	once sync.Once

	// Client
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Candidate walk
	lookupAttempts *prometheus.CounterVec

	// Tools
	toolCalls *prometheus.CounterVec
}

var atelierMetrics metricsAtelier

func (m *metricsAtelier) init() {
	m.once.Do(func() {
		m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "irismcp_atelier_requests_total", Help: "Atelier API requests by endpoint and HTTP status (0 when no response)"}, []string{"endpoint", "code"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
		m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "irismcp_atelier_request_seconds", Help: "Atelier API request latency", Buckets: buckets}, []string{"endpoint"})

		m.lookupAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "irismcp_lookup_attempts_total", Help: "Document lookup attempts by decision"}, []string{"outcome"})

		m.toolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "irismcp_tool_calls_total", Help: "Tool invocations by tool and result"}, []string{"tool", "result"})

		prometheus.MustRegister(
			m.requests, m.requestDuration,
			m.lookupAttempts,
			m.toolCalls,
		)
	})
}

// record helpers
func recordAtelierRequest(endpoint string, code int, elapsed time.Duration) {
	atelierMetrics.init()
	atelierMetrics.requests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	atelierMetrics.requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func recordLookupAttempt(o Outcome) {
	atelierMetrics.init()
	atelierMetrics.lookupAttempts.WithLabelValues(o.String()).Inc()
}

// RecordToolCall counts one tool invocation. The MCP layer calls it once per
// request with the tool name and whether the result was an error.
func RecordToolCall(tool string, isError bool) {
	atelierMetrics.init()
	result := "ok"
	if isError {
		result = "error"
	}
	atelierMetrics.toolCalls.WithLabelValues(tool, result).Inc()
}
