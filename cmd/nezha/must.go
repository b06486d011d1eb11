// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/nezha-labs/staking/log"
	"github.com/nezha-labs/staking/lvldb"
)

// maxClockOffset is how far the local clock may drift before a warning. Epoch
// deadlines are compared against call timestamps taken from it.
const maxClockOffset = 5 * time.Second

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	verbosity := ctx.Uint64(verbosityFlag.Name)
	if verbosity > math.MaxInt8 {
		return nil, errors.Errorf("invalid verbosity %d", verbosity)
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(log.FromLegacyLevel(int(verbosity)))

	output := io.Writer(os.Stderr)
	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandler(output, logLevel)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) &&
			os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandler(output, logLevel, useColor)
	}
	log.SetDefault(handler)
	return logLevel, nil
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".nezha")
	}
	return ""
}

func openStore(ctx *cli.Context, dataDir string) (*lvldb.LevelDB, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "staking.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "open staking database [%v]", dir)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem", "err", err)
	} else {
		// at most a quarter of the physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 4)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 256
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}
	return min(limit/2, 1024)
}

func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset.Abs() > maxClockOffset {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func loadKeys(paths []string) ([]*ecdsa.PrivateKey, error) {
	keys := make([]*ecdsa.PrivateKey, 0, len(paths))
	for _, path := range paths {
		key, err := crypto.LoadECDSA(path)
		if err != nil {
			return nil, errors.Wrapf(err, "load key %v", path)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "open output")
	}
	return f, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func printStartupMessage(dataDir, apiURL, metricsURL, adminURL string) {
	fmt.Printf(`Starting Nezha staking API
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
    Admin       [ %v ]
`, dataDir, apiURL, orDisabled(metricsURL), orDisabled(adminURL))
}

func orDisabled(url string) string {
	if url == "" {
		return "Disabled"
	}
	return url
}
