// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bastionstake/bastion/log"
)

// RequestLoggerMiddleware returns a middleware that logs api requests.
// enabled logs every request and can be flipped at runtime; requests
// slower than slowQueriesThreshold and, when log5xxErrors is set, 5xx
// responses are logged even while disabled.
func RequestLoggerMiddleware(logger log.Logger, enabled *atomic.Bool, slowQueriesThreshold time.Duration, log5xxErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// nothing can ever trigger a log entry, skip the body copy
			if !enabled.Load() && slowQueriesThreshold == time.Duration(0) && !log5xxErrors {
				next.ServeHTTP(w, r)
				return
			}

			// read the body up front so it can be logged after the
			// handler consumed it, and hand the handler a replay
			var bodyBytes []byte
			var err error
			if r.Body != nil {
				bodyBytes, err = io.ReadAll(r.Body)
				if err != nil {
					logger.Warn("unexpected body read error", "err", err)
					return // don't pass a broken request to the next handler
				}
				r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(recorder, r)
			duration := time.Since(start)

			slow := slowQueriesThreshold > time.Duration(0) && duration > slowQueriesThreshold
			failed := log5xxErrors && recorder.status >= http.StatusInternalServerError
			if !enabled.Load() && !slow && !failed {
				return
			}

			logger.Info("API Request",
				"URI", r.URL.String(),
				"Method", r.Method,
				"Body", string(bodyBytes),
				"Status", recorder.status,
				"DurationMs", duration.Milliseconds(),
				"Timestamp", time.Now().Unix(),
			)
		})
	}
}

// statusRecorder remembers the status a handler responded with.
// WriteHeader left uncalled reads as 200, like net/http treats it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working behind the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := r.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("response writer does not support hijacking")
}
