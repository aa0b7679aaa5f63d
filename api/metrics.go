// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/bastionstake/bastion/metrics"
)

var (
	metricHTTPReqCounter  = metrics.LazyLoadCounterVec("api_request_count", []string{"name", "code", "method"})
	metricHTTPReqDuration = metrics.LazyLoadHistogramVec("api_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs)
)

// metricsResponseWriter is a wrapper around http.ResponseWriter that
// captures the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

// Hijack complies with http.Hijacker to keep websocket upgrades
// working behind the middleware.
func (m *metricsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := m.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("response writer does not support hijacking")
}

// metricsMiddleware records request count and duration per named
// route. Unnamed routes, the metrics endpoint itself included, stay
// out of the meters.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var name string
		if current := mux.CurrentRoute(req); current != nil {
			name = current.GetName()
		}
		if name == "" {
			next.ServeHTTP(w, req)
			return
		}

		start := time.Now()
		mrw := newMetricsResponseWriter(w)
		next.ServeHTTP(mrw, req)

		labels := map[string]string{
			"name":   routeLabel(name),
			"code":   strconv.Itoa(mrw.statusCode),
			"method": req.Method,
		}
		metricHTTPReqCounter().AddWithLabel(1, labels)
		metricHTTPReqDuration().ObserveWithLabels(time.Since(start).Milliseconds(), labels)
	})
}

// routeLabel flattens a route name like "POST /stakes/{address}/add"
// into the label value "post_stakes_address_add".
func routeLabel(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		switch r {
		case ' ', '/', '-', '{', '}':
			return true
		}
		return false
	})
	return strings.Join(fields, "_")
}
