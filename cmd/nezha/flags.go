// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/nezha-labs/staking/log"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML config file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the staking database",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 256,
		Usage: "megabytes of ram allocated to the database cache",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	keyFlag = cli.StringSliceFlag{
		Name:  "key",
		Usage: "private key file of a signer, may be repeated",
	}
	timestampFlag = cli.Uint64Flag{
		Name:  "timestamp",
		Usage: "unix time the instructions execute at, defaults to now",
	}
	epochFlag = cli.Uint64Flag{
		Name:  "epoch",
		Usage: "epoch index",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "output file, defaults to stdout",
	}
	ticketsFlag = cli.StringFlag{
		Name:  "tickets",
		Usage: "YAML or JSON file listing the tickets of the epoch",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8680",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiCacheFlag = cli.IntFlag{
		Name:  "api-cache",
		Value: 512,
		Usage: "number of ended epochs cached by the API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with duration (ms) above the threshold will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all 5xx errors",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	disableNTPFlag = cli.BoolFlag{
		Name:  "disable-ntp",
		Usage: "skip the clock offset check at startup",
	}
)
