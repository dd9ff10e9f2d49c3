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

package simulation

import (
	"context"
	"errors"
	"math/bits"

	"golang.org/x/sync/errgroup"

	"github.com/probechain/oddgossip/consensus"
	"github.com/probechain/oddgossip/log"
)

// SystemAddrs is the handle bag returned by StartSimulation: every node
// handle in construction order, plus the tracker and wallet handles. It is
// the only surface external collaborators (a TUI, a statistics layer, the
// internal/observe API) ever touch.
type SystemAddrs struct {
	Nodes   []NodeHandle
	Tracker TrackerHandle
	Wallet  WalletHandle
}

// StartSimulation starts every node, then the tracker (which bootstraps
// peer lists), then the wallet (which begins injecting transactions), and
// returns the resulting handle bag.
func StartSimulation(nodes []*Node, walletFan int, broadcastIntervalMs uint64) (*SystemAddrs, error) {
	if walletFan <= 0 {
		return nil, errors.New("simulation: wallet_fan must be positive")
	}
	if broadcastIntervalMs == 0 {
		return nil, errors.New("simulation: broadcast_interval_ms must be positive")
	}

	handles := make([]NodeHandle, len(nodes))
	for i, node := range nodes {
		handles[i] = node.Start()
	}

	tracker := NewTracker(handles)
	trackerHandle := tracker.Start()

	wallet := NewWallet(handles, walletFan, broadcastIntervalMs)
	walletHandle := wallet.Start()

	log.Info("simulation started", "nodes", len(handles), "wallet_fan", walletFan)

	return &SystemAddrs{
		Nodes:   handles,
		Tracker: trackerHandle,
		Wallet:  walletHandle,
	}, nil
}

// GetAllEntries dispatches EntryRequest to every node concurrently, awaits
// all, and drops per-node ResponseErrors. It fails, with ErrMailbox, only
// if ctx is done before every node has been asked.
func (s *SystemAddrs) GetAllEntries(ctx context.Context) ([]consensus.Entry, error) {
	entries := make([]consensus.Entry, len(s.Nodes))
	ok := make([]bool, len(s.Nodes))

	g, gctx := errgroup.WithContext(ctx)
	for i, node := range s.Nodes {
		i, node := i, node
		g.Go(func() error {
			entry, err := node.RequestEntry(gctx)
			if errors.Is(err, ErrMailbox) {
				// Delivery failure: propagated to the caller.
				return err
			}
			if err != nil {
				// Simulated ResponseError: dropped, not propagated.
				return nil
			}
			entries[i] = entry
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]consensus.Entry, 0, len(entries))
	for i, got := range ok {
		if got {
			result = append(result, entries[i])
		}
	}
	return result, nil
}

// GetAllDistances returns the pairwise Hamming distance, over oddsketches,
// for every ordered pair (i, j) with j < i among successfully retrieved
// entries, in row-major order: i = 1..n, j = 0..i.
func (s *SystemAddrs) GetAllDistances(ctx context.Context) ([]uint32, error) {
	entries, err := s.GetAllEntries(ctx)
	if err != nil {
		return nil, err
	}

	n := len(entries)
	distances := make([]uint32, 0, n*(n-1)/2)
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			distances = append(distances, hammingDistance(entries[i].Oddsketch, entries[j].Oddsketch))
		}
	}
	return distances, nil
}

func hammingDistance(a, b consensus.Oddsketch) uint32 {
	var total uint32
	for i := range a {
		total += uint32(bits.OnesCount8(a[i] ^ b[i]))
	}
	return total
}
