// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the read-only view of the staking records.
package api

import (
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/api/epochs"
	"github.com/nezha-labs/staking/api/middleware"
	"github.com/nezha-labs/staking/api/stakes"
	"github.com/nezha-labs/staking/co"
	"github.com/nezha-labs/staking/log"
)

var logger = log.WithContext("pkg", "api")

// Reader is everything the API reads from the engine.
type Reader interface {
	epochs.Reader
	stakes.Reader
}

type Options struct {
	AllowedOrigins       string
	EpochCacheSize       int
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
}

// New return api router
func New(reader Reader, opts Options) (http.HandlerFunc, error) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	eps, err := epochs.New(reader, max(opts.EpochCacheSize, 1))
	if err != nil {
		return nil, err
	}
	eps.Mount(router, "/epochs")
	stakes.New(reader).
		Mount(router, "/stakes")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(middleware.MetricsMiddleware)
	}

	reqLogs := opts.EnableReqLogger
	if reqLogs == nil {
		reqLogs = &atomic.Bool{}
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, reqLogs, opts.SlowQueriesThreshold, opts.Log5xxErrors))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(handler)

	return handler.ServeHTTP, nil
}

// StartServer serves handler on addr until the returned close func is called.
// It returns the URL of the listener.
func StartServer(addr string, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("server stopped", "addr", addr, "err", err)
		}
	})
	return "http://" + listener.Addr().String(), func() {
		srv.Close()
		goes.Wait()
	}, nil
}
