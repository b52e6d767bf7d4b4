// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Command devnode hosts a provider engine instance: it loads a
// configuration file, constructs the engine, mines blocks on an interval if
// configured to, and prints a status table on request. It is illustrative
// scaffolding, not a JSON-RPC server: wiring an RPC transport on top of
// provider.Provider is left to whatever host embeds this core.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erigontech/erigon-devnet/core/evmexec/valuetransfer"
	"github.com/erigontech/erigon-devnet/core/forkclient"
	"github.com/erigontech/erigon-devnet/core/metrics"
	"github.com/erigontech/erigon-devnet/logging"
	"github.com/erigontech/erigon-devnet/provider"
	"github.com/erigontech/erigon-devnet/providercfg"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "devnode",
		Short: "Run a provider engine instance against a configuration file",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "devnode.yaml", "path to the engine configuration file")

	root.AddCommand(newRunCommand(&configPath))
	root.AddCommand(newStatusCommand(&configPath))
	return root
}

func newRunCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Construct the engine and mine blocks until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *configPath)
		},
	}
}

func newStatusCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Construct the engine, print its genesis state, and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return status(cmd.Context(), *configPath)
		},
	}
}

func buildEngine(ctx context.Context, cfg *providercfg.Configuration) (*provider.Provider, func(), error) {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		return nil, nil, fmt.Errorf("devnode: build logger: %w", err)
	}
	logger, err := logging.New(zapLogger, true)
	if err != nil {
		return nil, nil, fmt.Errorf("devnode: build logger: %w", err)
	}

	metricsInstance := metrics.New(prometheus.DefaultRegisterer)

	var client forkclient.RPCClient
	var cache *forkclient.DiskCache
	cleanup := func() {}
	if cfg.Fork != nil {
		client = forkclient.NewHTTPClient(cfg.Fork.JSONRPCURL, 10)
		dir := cfg.CacheDir
		if dir == "" {
			dir = "."
		}
		cache, err = forkclient.NewDiskCache(dir, 4096)
		if err != nil {
			return nil, nil, fmt.Errorf("devnode: open fork cache: %w", err)
		}
		cleanup = func() { _ = cache.Close() }
	}

	p, err := provider.NewProvider(ctx, cfg, valuetransfer.New(), client, cache, logger, metricsInstance)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("devnode: construct engine: %w", err)
	}
	return p, cleanup, nil
}

func run(ctx context.Context, configPath string) error {
	cfg, err := providercfg.Load(configPath)
	if err != nil {
		return fmt.Errorf("devnode: load config: %w", err)
	}

	p, cleanup, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("devnode: chain %d, instance %s, genesis block %d\n", p.ChainID(), p.InstanceID(), p.LastBlockNumber())

	if cfg.Mining.Interval == nil || *cfg.Mining.Interval <= 0 {
		<-ctx.Done()
		return nil
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*cfg.Mining.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-sigCtx.Done():
			return nil
		case <-ticker.C:
			if err := p.IntervalMine(); err != nil {
				p.Logger().Error("interval mine failed", "error", err)
			}
		}
	}
}

func status(ctx context.Context, configPath string) error {
	cfg, err := providercfg.Load(configPath)
	if err != nil {
		return fmt.Errorf("devnode: load config: %w", err)
	}

	p, cleanup, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"field", "value"})
	t.AppendRow(table.Row{"chain id", p.ChainID()})
	t.AppendRow(table.Row{"network id", p.NetworkID()})
	t.AppendRow(table.Row{"instance id", p.InstanceID()})
	t.AppendRow(table.Row{"coinbase", p.Coinbase()})
	t.AppendRow(table.Row{"last block", p.LastBlockNumber()})
	if fm := p.ForkMetadata(); fm != nil {
		t.AppendRow(table.Row{"forked at", fm.ForkBlockNumber})
		t.AppendRow(table.Row{"fork block hash", fm.ForkBlockHash})
	}
	t.Render()
	return nil
}
