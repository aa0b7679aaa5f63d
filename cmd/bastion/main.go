// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/bastionstake/bastion/api"
	"github.com/bastionstake/bastion/journal"
	"github.com/bastionstake/bastion/kv"
	"github.com/bastionstake/bastion/log"
	"github.com/bastionstake/bastion/metrics"
	"github.com/bastionstake/bastion/treasury"
	"github.com/bastionstake/bastion/vault"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Bastion",
		Usage:     "Custodial staking ledger service",
		Copyright: "2025 The Bastion developers",
		Flags: []cli.Flag{
			dataDirFlag,
			memoryFlag,
			administratorFlag,
			minStakeFlag,
			minStakeDurationFlag,
			penaltyFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			pprofFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	// enable metrics as soon as possible, before components register theirs
	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			fatal(fmt.Sprintf("start metrics server: %v", err))
		}
		metricsURL = url
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
	}

	var (
		store       kv.Store
		jrnl        *journal.Journal
		instanceDir string
		err         error
	)
	if ctx.Bool(memoryFlag.Name) {
		instanceDir = "Memory"
		store = kv.NewMem()
		if jrnl, err = journal.NewMem(); err != nil {
			fatal(fmt.Sprintf("open journal: %v", err))
		}
	} else {
		instanceDir = makeInstanceDir(ctx)
		store = openStore(instanceDir)
		jrnl = openJournal(instanceDir)
	}
	defer func() { logger.Info("closing ledger database..."); store.Close() }()
	defer func() { logger.Info("closing journal..."); jrnl.Close() }()

	// one physical store, split by key space
	trsy := treasury.New(kv.Bucket("t").NewStore(store))
	vlt, err := vault.New(
		kv.Bucket("v").NewStore(store),
		trsy,
		vaultOptions(ctx),
		jrnl,
	)
	if err != nil {
		fatal(fmt.Sprintf("open vault: %v", err))
	}

	apiLogs := atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiHandler, apiCloser := api.New(vlt, jrnl, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		BacktraceLimit: ctx.Uint64(apiBacktraceLimitFlag.Name),
		QueryLimit:     ctx.Uint64(apiLogsLimitFlag.Name),
		PprofOn:        ctx.Bool(pprofFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
		APILogs:        &apiLogs,
	})
	defer apiCloser()

	apiURL, apiSrvCloser, err := startAPIServer(ctx, apiHandler)
	if err != nil {
		fatal(fmt.Sprintf("start API server: %v", err))
	}
	defer func() { logger.Info("stopping API server..."); apiSrvCloser() }()

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := startAdminServer(ctx.String(adminAddrFlag.Name), logLevel, vlt, jrnl, &apiLogs)
		if err != nil {
			fatal(fmt.Sprintf("start admin server: %v", err))
		}
		adminURL = url
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
	}

	printStartupMessage(vlt, instanceDir, apiURL, metricsURL, adminURL)

	exitSignal := handleExitSignal()
	<-exitSignal.Done()
	return nil
}
