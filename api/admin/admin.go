// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the operator endpoints: the log level and the API
// request log switch.
package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/api/restutil"
	"github.com/nezha-labs/staking/log"
)

var logger = log.WithContext("pkg", "admin")

type LogLevel struct {
	Level string `json:"level"`
}

type LogStatus struct {
	Enabled bool `json:"enabled"`
}

var levels = map[string]slog.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
	"crit":  log.LevelCrit,
}

type Admin struct {
	logLevel *slog.LevelVar
	apiLogs  *atomic.Bool
}

// New returns the admin router mounted under /admin.
func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool) http.HandlerFunc {
	a := &Admin{logLevel: logLevel, apiLogs: apiLogs}
	router := mux.NewRouter()
	a.Mount(router, "/admin")
	return handlers.CompressHandler(router).ServeHTTP
}

func (a *Admin) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/loglevel").
		Methods(http.MethodGet).
		Name("admin_get_log_level").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetLogLevel))
	sub.Path("/loglevel").
		Methods(http.MethodPost).
		Name("admin_post_log_level").
		HandlerFunc(restutil.WrapHandlerFunc(a.handlePostLogLevel))
	sub.Path("/apilogs").
		Methods(http.MethodGet).
		Name("admin_get_api_logs").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetAPILogs))
	sub.Path("/apilogs").
		Methods(http.MethodPost).
		Name("admin_post_api_logs").
		HandlerFunc(restutil.WrapHandlerFunc(a.handlePostAPILogs))
}

func (a *Admin) levelName() string {
	for name, lvl := range levels {
		if lvl == a.logLevel.Level() {
			return name
		}
	}
	return a.logLevel.Level().String()
}

func (a *Admin) handleGetLogLevel(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, LogLevel{Level: a.levelName()})
}

func (a *Admin) handlePostLogLevel(w http.ResponseWriter, r *http.Request) error {
	var req LogLevel
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	lvl, ok := levels[req.Level]
	if !ok {
		return restutil.BadRequest(errors.Errorf("invalid verbosity level %q", req.Level))
	}
	a.logLevel.Set(lvl)
	logger.Info("log level updated", "level", req.Level)
	return restutil.WriteJSON(w, LogLevel{Level: a.levelName()})
}

func (a *Admin) handleGetAPILogs(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, LogStatus{Enabled: a.apiLogs.Load()})
}

func (a *Admin) handlePostAPILogs(w http.ResponseWriter, r *http.Request) error {
	var req LogStatus
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(err)
	}
	a.apiLogs.Store(req.Enabled)
	logger.Info("api logs updated", "enabled", req.Enabled)
	return restutil.WriteJSON(w, LogStatus{Enabled: a.apiLogs.Load()})
}
