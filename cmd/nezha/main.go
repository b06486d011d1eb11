// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ecdsa"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/nezha-labs/staking/api"
	"github.com/nezha-labs/staking/api/admin"
	"github.com/nezha-labs/staking/instruction"
	"github.com/nezha-labs/staking/log"
	"github.com/nezha-labs/staking/metrics"
	"github.com/nezha-labs/staking/staking"
	"github.com/nezha-labs/staking/staking/draw"
	"github.com/nezha-labs/staking/staking/reverts"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "nezha")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	storeFlags := []cli.Flag{configFlag, dataDirFlag, cacheFlag, verbosityFlag, jsonLogsFlag}

	app := cli.App{
		Version:   fullVersion(),
		Name:      "Nezha",
		Usage:     "Staking lottery engine",
		Copyright: "2025 The VeChainThor developers",
		Commands: []cli.Command{
			{
				Name:      "exec",
				Usage:     "execute the calls listed in YAML files, in order",
				ArgsUsage: "<file|-> [file...]",
				Flags:     append(storeFlags, keyFlag, timestampFlag),
				Action:    execAction,
			},
			{
				Name:   "keygen",
				Usage:  "generate a signer key",
				Flags:  []cli.Flag{outFlag},
				Action: keygenAction,
			},
			{
				Name:   "draw",
				Usage:  "prove the winning combination of an epoch with the VRF key",
				Flags:  append(storeFlags, keyFlag, epochFlag, outFlag),
				Action: drawAction,
			},
			{
				Name:   "tally",
				Usage:  "compute the winners of an epoch and write the calls publishing them",
				Flags:  append(storeFlags, epochFlag, ticketsFlag, outFlag),
				Action: tallyAction,
			},
			{
				Name:  "serve",
				Usage: "serve the staking records over HTTP",
				Flags: append(storeFlags,
					apiAddrFlag,
					apiCorsFlag,
					apiCacheFlag,
					enableAPILogsFlag,
					apiSlowQueriesThresholdFlag,
					apiLog5xxErrorsFlag,
					pprofFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
					disableNTPFlag,
				),
				Action: serveAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type engine struct {
	*staking.Staking
	close func()
}

func openEngine(ctx *cli.Context) (*engine, *Config, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	db, err := openStore(ctx, cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return &engine{
		Staking: staking.New(db, cfg.Policy),
		close: func() {
			logger.Info("closing staking database...")
			if err := db.Close(); err != nil {
				logger.Warn("failed to close staking database", "err", err)
			}
		},
	}, cfg, nil
}

func execAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	if ctx.NArg() == 0 {
		return errors.New("no call file given")
	}

	keys, err := loadKeys(ctx.StringSlice(keyFlag.Name))
	if err != nil {
		return err
	}
	signers := make([]common.Address, 0, len(keys))
	for _, key := range keys {
		signers = append(signers, crypto.PubkeyToAddress(key.PublicKey))
	}

	var calls []*staking.Call
	for _, path := range ctx.Args() {
		r, err := openInput(path)
		if err != nil {
			return err
		}
		decoded, err := decodeCalls(r)
		r.Close()
		if err != nil {
			return errors.WithMessage(err, path)
		}
		calls = append(calls, decoded...)
	}

	eng, _, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close()

	timestamp := ctx.Uint64(timestampFlag.Name)
	if timestamp == 0 {
		timestamp = uint64(time.Now().Unix())
	}

	bar := pb.New(len(calls)).SetMaxWidth(90)
	if len(calls) > 1 {
		bar.Output = os.Stderr
	} else {
		bar.NotPrint = true
	}
	bar.Start()
	for i, call := range calls {
		call.Signers = append(call.Signers, signers...)
		if call.Timestamp == 0 {
			call.Timestamp = timestamp
		}
		if err := eng.Execute(call); err != nil {
			if code, ok := reverts.CodeOf(err); ok {
				return errors.WithMessagef(err, "call %d (%v) reverted with code %d", i, call.Instruction.Tag(), code)
			}
			return errors.WithMessagef(err, "call %d (%v)", i, call.Instruction.Tag())
		}
		bar.Increment()
	}
	bar.Finish()
	logger.Info("calls executed", "count", len(calls))
	return nil
}

func keygenAction(ctx *cli.Context) error {
	path := ctx.String(outFlag.Name)
	if path == "" {
		return errors.Errorf("-%s is required", outFlag.Name)
	}
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("key file %v already exists", path)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	if err := crypto.SaveECDSA(path, key); err != nil {
		return errors.Wrap(err, "save key")
	}
	fmt.Printf("address:    %v\n", crypto.PubkeyToAddress(key.PublicKey))
	fmt.Printf("public key: %v\n", hexutil.Encode(crypto.CompressPubkey(&key.PublicKey)))
	return nil
}

func drawAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	keys, err := loadKeys(ctx.StringSlice(keyFlag.Name))
	if err != nil {
		return err
	}
	if len(keys) != 1 {
		return errors.Errorf("exactly one -%s (the VRF key) is required", keyFlag.Name)
	}

	eng, _, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close()

	index := ctx.Uint64(epochFlag.Name)
	ep, err := eng.Epoch(index)
	if err != nil {
		return err
	}
	if ep.Investment == nil {
		return errors.Errorf("epoch %d has no tickets yet", index)
	}

	ins, combination, err := proveDraw(keys[0], ep.Index, ep.Investment.Tickets.Hash)
	if err != nil {
		return err
	}
	logger.Info("winning combination", "epoch", index, "combination", combination)

	out, err := openOutput(ctx.String(outFlag.Name))
	if err != nil {
		return err
	}
	defer out.Close()
	return encodeCalls(out, []*staking.Call{{Instruction: ins}})
}

// proveDraw builds the call publishing the draw and returns the combination
// the engine will derive from it.
func proveDraw(key *ecdsa.PrivateKey, epochIndex uint64, ticketsHash common.Hash) (*instruction.SetWinningCombination, draw.Combination, error) {
	alpha := draw.Alpha(epochIndex, ticketsHash)
	_, proof, err := draw.Prove(key, alpha)
	if err != nil {
		return nil, draw.Combination{}, errors.Wrap(err, "prove draw")
	}
	pub := crypto.CompressPubkey(&key.PublicKey)
	beta, _, err := draw.Verify(pub, alpha, proof)
	if err != nil {
		return nil, draw.Combination{}, err
	}
	return &instruction.SetWinningCombination{
		Epoch:     epochIndex,
		PublicKey: pub,
		Proof:     proof,
	}, draw.FromOutput(beta), nil
}

func tallyAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	path := ctx.String(ticketsFlag.Name)
	if path == "" {
		return errors.Errorf("-%s is required", ticketsFlag.Name)
	}
	r, err := openInput(path)
	if err != nil {
		return err
	}
	tickets, err := decodeTickets(r)
	r.Close()
	if err != nil {
		return errors.WithMessage(err, path)
	}

	eng, _, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close()

	index := ctx.Uint64(epochFlag.Name)
	ep, err := eng.Epoch(index)
	if err != nil {
		return err
	}
	if ep.Draw == nil {
		return errors.Errorf("epoch %d has no winning combination yet", index)
	}
	if ep.Investment != nil && uint64(len(tickets)) != ep.Investment.Tickets.Count {
		logger.Warn("ticket count differs from the recorded tickets info",
			"file", len(tickets), "recorded", ep.Investment.Tickets.Count)
	}

	fmt.Fprintln(os.Stderr, ">> Tallying tickets <<")
	bar := pb.New(len(tickets)).SetMaxWidth(90)
	bar.Output = os.Stderr
	bar.Start()
	calls := tally(index, tickets, ep.Draw.Combination, bar)
	bar.Finish()

	out, err := openOutput(ctx.String(outFlag.Name))
	if err != nil {
		return err
	}
	defer out.Close()
	return encodeCalls(out, calls)
}

func serveAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}
	if !ctx.Bool(disableNTPFlag.Name) {
		go checkClockOffset()
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.EnablePrometheus("nezha")
	}

	eng, cfg, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close()

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, err := api.New(eng, api.Options{
		AllowedOrigins:       cfg.APICors,
		EpochCacheSize:       ctx.Int(apiCacheFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        metrics.Enabled(),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
	})
	if err != nil {
		return err
	}
	apiURL, stopAPI, err := api.StartServer(cfg.APIAddr, handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	var metricsURL, adminURL string
	if metrics.Enabled() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler())
		url, stop, err := api.StartServer(cfg.MetricsAddr, mux)
		if err != nil {
			return errors.WithMessage(err, "metrics server")
		}
		defer func() { logger.Info("stopping metrics server..."); stop() }()
		metricsURL = url + "/metrics"
	}
	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := api.StartServer(cfg.AdminAddr, admin.New(logLevel, apiLogs))
		if err != nil {
			return errors.WithMessage(err, "admin server")
		}
		defer func() { logger.Info("stopping admin server..."); stop() }()
		adminURL = url + "/admin"
	}

	printStartupMessage(cfg.DataDir, apiURL, metricsURL, adminURL)
	<-exitSignal.Done()
	return nil
}
