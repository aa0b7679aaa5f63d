// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/bastionstake/bastion/api/admin/apilogs"
	"github.com/bastionstake/bastion/api/admin/health"
	"github.com/bastionstake/bastion/api/admin/loglevel"
)

func New(logLevel *slog.LevelVar, logsEnabled *atomic.Bool, healthStatus *health.Health) http.HandlerFunc {
	router := mux.NewRouter()
	router.PathPrefix("/admin")

	loglevel.New(logLevel).Mount(router, "/loglevel")
	apilogs.New(logsEnabled).Mount(router, "/apilogs")
	health.NewAPI(healthStatus).Mount(router, "/health")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
