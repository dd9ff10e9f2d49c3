// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

// oddgossipd runs the gossip consensus simulation standalone: it starts
// the node/tracker/wallet actors, serves the observation API, and prints a
// final winner summary on shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/probechain/oddgossip/consensus"
	"github.com/probechain/oddgossip/internal/config"
	"github.com/probechain/oddgossip/internal/observe"
	"github.com/probechain/oddgossip/log"
	"github.com/probechain/oddgossip/simulation"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a TOML configuration file overriding the defaults",
	}
	nodesFlag = cli.IntFlag{
		Name:  "nodes",
		Usage: "number of simulated nodes (overrides config)",
	}
	listenFlag = cli.StringFlag{
		Name:  "listen",
		Usage: "observation API listen address (overrides config)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity: 0=crit 1=error 2=warn 3=info 4=debug 5=trace",
		Value: 3,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "oddgossipd"
	app.Usage = "gossip-based probabilistic consensus simulation"
	app.Flags = []cli.Flag{configFlag, nodesFlag, listenFlag, verbosityFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	log.SetLevel(log.Level(ctx.Int(verbosityFlag.Name)))

	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("oddgossipd: loading config: %w", err)
		}
		cfg = loaded
	}
	if n := ctx.Int(nodesFlag.Name); n > 0 {
		cfg.NodeCount = n
	}
	if addr := ctx.String(listenFlag.Name); addr != "" {
		cfg.ObserveListenAddr = addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("oddgossipd: %w", err)
	}

	nodes := make([]*simulation.Node, cfg.NodeCount)
	for i := range nodes {
		node, err := simulation.NewNode(cfg.HashRate, cfg.HeartbeatMs, cfg.FaultRate, cfg.SampleSize)
		if err != nil {
			return fmt.Errorf("oddgossipd: creating node %d: %w", i, err)
		}
		nodes[i] = node
	}

	sys, err := simulation.StartSimulation(nodes, cfg.WalletFan, cfg.BroadcastIntervalMs)
	if err != nil {
		return fmt.Errorf("oddgossipd: starting simulation: %w", err)
	}
	log.Info("simulation started", "node_count", cfg.NodeCount, "hash_rate", cfg.HashRate)

	server := observe.NewServer(sys, time.Duration(cfg.ObserveStreamPeriodMs)*time.Millisecond)
	serverCtx, cancelServer := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.ListenAndServe(serverCtx, cfg.ObserveListenAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			log.Error("observation server exited", "err", err)
		}
	}
	cancelServer()

	return printSummary(sys)
}

func printSummary(sys *simulation.SystemAddrs) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := sys.GetAllEntries(ctx)
	if err != nil {
		return fmt.Errorf("oddgossipd: fetching final entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("no entries retrieved")
		return nil
	}

	winner, err := consensus.CalculateWinnerParallel(entries)
	if err != nil {
		return fmt.Errorf("oddgossipd: computing winner: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"node", "mass", "popcount", "winner"})
	for i, e := range entries {
		mark := ""
		if i == winner {
			mark = "*"
		}
		table.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", e.Mass),
			fmt.Sprintf("%d", e.Oddsketch.PopCount()),
			mark,
		})
	}
	table.Render()
	return nil
}
