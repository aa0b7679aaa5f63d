// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"runtime"

	isatty "github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/journal"
	"github.com/bastionstake/bastion/kv"
	"github.com/bastionstake/bastion/log"
	"github.com/bastionstake/bastion/vault"
)

func fatal(args ...interface{}) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	logLevel := ctx.Uint64(verbosityFlag.Name)
	level := log.FromLegacyLevel(int(logLevel))

	var leveler slog.LevelVar
	leveler.Set(level)

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stdout, &leveler)
	} else {
		useColor := isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, &leveler, useColor)
	}
	log.SetDefault(log.NewLogger(handler))

	return &leveler
}

func makeInstanceDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name))
	}

	instanceDir := filepath.Join(dataDir, "instance")
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		fatal(fmt.Sprintf("create instance dir [%v]: %v", instanceDir, err))
	}
	return instanceDir
}

func openStore(instanceDir string) kv.Store {
	path := filepath.Join(instanceDir, "ledger.db")
	store, err := kv.New(path, kv.Options{})
	if err != nil {
		fatal(fmt.Sprintf("open ledger database [%v]: %v", path, err))
	}
	return store
}

func openJournal(instanceDir string) *journal.Journal {
	path := filepath.Join(instanceDir, "journal.db")
	jrnl, err := journal.New(path)
	if err != nil {
		fatal(fmt.Sprintf("open journal [%v]: %v", path, err))
	}
	return jrnl
}

func vaultOptions(ctx *cli.Context) vault.Options {
	opts := vault.Options{
		MinStakeDuration: ctx.Uint64(minStakeDurationFlag.Name) * bastion.DaySeconds,
		PenaltyPercent:   ctx.Uint64(penaltyFlag.Name),
	}

	if raw := ctx.String(administratorFlag.Name); raw != "" {
		admin, err := bastion.ParseAddress(raw)
		if err != nil {
			fatal(fmt.Sprintf("parse -%s: %v", administratorFlag.Name, err))
		}
		opts.Admin = admin
	}

	minStake, ok := new(big.Int).SetString(ctx.String(minStakeFlag.Name), 10)
	if !ok || minStake.Sign() <= 0 {
		fatal(fmt.Sprintf("parse -%s: expected a positive decimal integer", minStakeFlag.Name))
	}
	opts.MinStake = minStake

	return opts
}
