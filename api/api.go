// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/bastionstake/bastion/api/events"
	"github.com/bastionstake/bastion/api/middleware"
	"github.com/bastionstake/bastion/api/staking"
	"github.com/bastionstake/bastion/api/subscriptions"
	"github.com/bastionstake/bastion/api/system"
	"github.com/bastionstake/bastion/journal"
	"github.com/bastionstake/bastion/log"
	"github.com/bastionstake/bastion/vault"
)

var logger = log.WithContext("pkg", "api")

// LogStatus reports whether per-request api logging is on. It doubles
// as the body that flips it.
type LogStatus struct {
	Enabled bool `json:"enabled"`
}

// Options tunes the assembled http API.
type Options struct {
	AllowedOrigins string
	BacktraceLimit uint64 // how far a subscription may resume behind the journal head
	QueryLimit     uint64 // most records one events query may return
	PprofOn        bool
	EnableMetrics  bool

	// APILogs turns per-request logging on and off at runtime; nil
	// leaves the request logger out entirely. 5xx responses are logged
	// even while off.
	APILogs *atomic.Bool
}

// New assembles the http API over the vault and its journal. The
// returned closer breaks the active subscriptions, which ride on
// hijacked conns the server cannot close itself.
func New(vlt *vault.Vault, jrnl *journal.Journal, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, origin := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(origin))
	}

	router := mux.NewRouter()

	staking.New(vlt, nil).
		Mount(router, "/stakes")
	system.New(vlt, nil).
		Mount(router, "/system")
	events.New(jrnl, opts.QueryLimit).
		Mount(router, "/events")
	subs := subscriptions.New(jrnl, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.APILogs != nil {
		handler = middleware.RequestLoggerMiddleware(logger, opts.APILogs, 0, true)(handler)
	}

	return handler.ServeHTTP, subs.Close // subscriptions ride on hijacked conns, which need to be closed
}
