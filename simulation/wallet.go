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
	"math/rand"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/probechain/oddgossip/internal/xsample"
	"github.com/probechain/oddgossip/log"
)

// recentSeedCacheSize bounds the wallet's ambient "recently injected
// seeds" debug cache; it has no effect on broadcast behavior.
const recentSeedCacheSize = 256

// Wallet is the periodic synthetic transaction injector: on every tick it
// samples a random subset of nodes and fire-and-forgets a Transaction to
// each.
type Wallet struct {
	nodes             []NodeHandle
	sampleSize        int
	broadcastInterval time.Duration

	recentSeeds *lru.Cache
	log         *log.Logger
}

// NewWallet constructs a Wallet over nodes, sampling sampleSize of them
// every broadcastIntervalMs milliseconds.
func NewWallet(nodes []NodeHandle, sampleSize int, broadcastIntervalMs uint64) *Wallet {
	cache, err := lru.New(recentSeedCacheSize)
	if err != nil {
		// Only fails for a non-positive size, which recentSeedCacheSize
		// never is.
		panic(err)
	}
	return &Wallet{
		nodes:             nodes,
		sampleSize:        sampleSize,
		broadcastInterval: time.Duration(broadcastIntervalMs) * time.Millisecond,
		recentSeeds:       cache,
		log:               log.New("component", "wallet"),
	}
}

// WalletHandle is an opaque marker for a started Wallet.
type WalletHandle struct {
	wallet *Wallet
}

// Start begins the periodic broadcast loop and returns a handle to it.
func (w *Wallet) Start() WalletHandle {
	go w.run()
	return WalletHandle{wallet: w}
}

func (w *Wallet) run() {
	ticker := time.NewTicker(w.broadcastInterval)
	defer ticker.Stop()
	for range ticker.C {
		w.broadcast()
	}
}

// broadcast samples min(sampleSize, len(nodes)) nodes and sends each a
// fresh Transaction. The wallet never awaits delivery or effect.
func (w *Wallet) broadcast() {
	sample := xsample.Choose(w.nodes, w.sampleSize)
	seed := rand.Uint64()
	for _, node := range sample {
		node.SendTransaction(seed)
	}
	w.recentSeeds.Add(seed, time.Now())
	w.log.Trace("broadcast", "sampled", len(sample), "seed", seed)
}

// RecentSeedCount reports how many distinct recent tx seeds the wallet
// remembers. Ambient observability accessor, not part of the core
// protocol.
func (h WalletHandle) RecentSeedCount() int {
	return h.wallet.recentSeeds.Len()
}
