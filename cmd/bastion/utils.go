// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/bastionstake/bastion/vault"
)

func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.bastion")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "org.bastion")
		} else {
			return filepath.Join(home, ".org.bastion")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
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

func printStartupMessage(vlt *vault.Vault, instanceDir, apiURL, metricsURL, adminURL string) {
	cfg, err := vlt.Config()
	if err != nil {
		fatal(fmt.Sprintf("read config: %v", err))
	}
	custody, err := vlt.Custody()
	if err != nil {
		fatal(fmt.Sprintf("read custody: %v", err))
	}

	fmt.Printf(`Starting Bastion %v
    Administrator [ %v ]
    Paused        [ %v ]
    Min stake     [ %v ]
    Min duration  [ %vs ]
    Custody       [ %v ]
    Instance dir  [ %v ]
    API portal    [ %v ]
`,
		fullVersion(),
		cfg.Admin,
		cfg.Paused,
		vlt.MinStake(),
		cfg.MinStakeDuration,
		custody,
		instanceDir,
		apiURL)

	if metricsURL != "" {
		fmt.Printf("    Metrics       [ %v ]\n", metricsURL)
	}
	if adminURL != "" {
		fmt.Printf("    Admin         [ %v ]\n", adminURL)
	}
}
