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

// Package simulation implements the gossip simulation's actor flow: Node,
// Tracker, Wallet and the SystemAddrs harness that wires them together.
package simulation

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/google/uuid"

	"github.com/probechain/oddgossip/consensus"
	"github.com/probechain/oddgossip/internal/xsample"
	"github.com/probechain/oddgossip/log"
)

const (
	stateUnstarted int32 = iota
	stateRunning
)

// Node is an actor owning exactly one consensus.Entry. It samples peers on
// a heartbeat, fetches their entries concurrently, and adopts whichever
// entry wins under consensus.CalculateWinner.
type Node struct {
	id uuid.UUID

	hashRate   uint64
	heartbeat  time.Duration
	faultRate  uint8
	sampleSize int

	entryMu sync.RWMutex
	entry   consensus.Entry

	peersMu sync.Mutex
	peers   []NodeHandle
	peerSet mapset.Set

	state int32 // atomic: stateUnstarted | stateRunning

	log *log.Logger
}

// NewNode constructs an unstarted Node. hashRate is the number of uniform
// draws Work takes per mass computation; heartbeatMs is the reconcile
// period; faultRate/100 is the EntryRequest simulated-failure probability;
// sampleSize is the number of peers contacted per reconcile round.
func NewNode(hashRate uint64, heartbeatMs uint64, faultRate uint8, sampleSize int) (*Node, error) {
	if heartbeatMs == 0 {
		return nil, errors.New("simulation: heartbeat_ms must be positive")
	}
	if sampleSize <= 0 {
		return nil, errors.New("simulation: sample_size must be positive")
	}

	id := uuid.New()
	return &Node{
		id:         id,
		hashRate:   hashRate,
		heartbeat:  time.Duration(heartbeatMs) * time.Millisecond,
		faultRate:  faultRate,
		sampleSize: sampleSize,
		peerSet:    mapset.NewSet(),
		log:        log.New("component", "node", "id", id.String()),
	}, nil
}

// Start transitions the Node from Unstarted to Running, scheduling the
// periodic reconcile, and returns a cloneable handle to it. Calling Start
// more than once is a no-op beyond the first call.
func (n *Node) Start() NodeHandle {
	handle := NodeHandle{id: n.id, node: n}
	if atomic.CompareAndSwapInt32(&n.state, stateUnstarted, stateRunning) {
		go n.runHeartbeat()
	}
	return handle
}

func (n *Node) runHeartbeat() {
	ticker := time.NewTicker(n.heartbeat)
	defer ticker.Stop()
	for range ticker.C {
		n.reconcile()
	}
}

// reconcile samples peers, fans out EntryRequest concurrently, awaits all
// responses (dropping failures), appends the node's own snapshot, and
// adopts the consensus.CalculateWinner result. It never blocks incoming
// EntryRequest/Transaction handling: those only ever take the entry's
// RWMutex briefly and are untouched by the in-flight fan-out below.
func (n *Node) reconcile() {
	n.peersMu.Lock()
	peers := append([]NodeHandle(nil), n.peers...)
	n.peersMu.Unlock()

	sample := xsample.Choose(peers, n.sampleSize)

	ctx, cancel := context.WithTimeout(context.Background(), n.heartbeat)
	defer cancel()

	var wg sync.WaitGroup
	results := make([]consensus.Entry, len(sample))
	ok := make([]bool, len(sample))
	for i, peer := range sample {
		wg.Add(1)
		go func(i int, peer NodeHandle) {
			defer wg.Done()
			entry, err := peer.RequestEntry(ctx)
			if err != nil {
				n.log.Debug("dropped reconcile response", "peer", peer.id.String(), "err", err)
				return
			}
			results[i] = entry
			ok[i] = true
		}(i, peer)
	}
	wg.Wait()

	responses := make([]consensus.Entry, 0, len(sample)+1)
	for i, got := range ok {
		if got {
			responses = append(responses, results[i])
		}
	}
	responses = append(responses, n.snapshotEntry())

	winnerIdx, err := consensus.CalculateWinner(responses)
	if err != nil {
		// Unreachable: responses always contains at least the self
		// snapshot. Guarded per the spec's emptiness-check requirement.
		return
	}
	winner := responses[winnerIdx]

	n.entryMu.Lock()
	if winnerIdx != len(responses)-1 {
		// Adopting a peer's entry is a local mutation of this node's entry.
		winner.Version = n.entry.Version + 1
	}
	n.entry = winner
	n.entryMu.Unlock()

	n.log.Trace("reconciled", "peers_sampled", len(sample), "responses", len(responses)-1, "mass", winner.Mass)
}

func (n *Node) snapshotEntry() consensus.Entry {
	n.entryMu.RLock()
	defer n.entryMu.RUnlock()
	return n.entry.Clone()
}

// handleEntryRequest returns a clone of the current entry, or ErrResponse
// with probability faultRate/100.
func (n *Node) handleEntryRequest() (consensus.Entry, error) {
	if n.faultRate > 0 && rand.Intn(100) < int(n.faultRate) {
		n.log.Debug("injecting simulated response failure")
		return consensus.Entry{}, ErrResponse
	}
	return n.snapshotEntry(), nil
}

func (n *Node) addPeer(peer NodeHandle) {
	n.peersMu.Lock()
	defer n.peersMu.Unlock()
	n.peers = append(n.peers, peer)
	n.peerSet.Add(peer.id)
}

func (n *Node) addPeerBatch(batch []NodeHandle) {
	n.peersMu.Lock()
	defer n.peersMu.Unlock()
	n.peers = append(n.peers, batch...)
	for _, peer := range batch {
		n.peerSet.Add(peer.id)
	}
}

func (n *Node) peerCount() int {
	n.peersMu.Lock()
	defer n.peersMu.Unlock()
	return len(n.peers)
}

func (n *Node) hasPeer(id uuid.UUID) bool {
	n.peersMu.Lock()
	defer n.peersMu.Unlock()
	return n.peerSet.Contains(id)
}

func (n *Node) applyTransaction(seed uint64) {
	// seed is advisory: the bit index is drawn from a fresh local RNG,
	// matching the source protocol's Node::new_tx call site.
	_ = seed
	index := rand.Intn(consensus.OddsketchLenBits)

	n.entryMu.Lock()
	n.entry.ApplyTransaction(n.hashRate, index)
	n.entryMu.Unlock()
}

// NodeHandle is a cloneable reference to a running (or not-yet-started)
// Node. It is a pure routing token, not an owner of the Node's state.
type NodeHandle struct {
	id   uuid.UUID
	node *Node
}

// ID returns the handle's stable identifier.
func (h NodeHandle) ID() uuid.UUID {
	return h.id
}

// RequestEntry is the EntryRequest message: it returns a clone of the
// target node's current entry, ErrResponse on simulated fault injection,
// or ErrMailbox if ctx is already done (simulated delivery failure).
func (h NodeHandle) RequestEntry(ctx context.Context) (consensus.Entry, error) {
	select {
	case <-ctx.Done():
		return consensus.Entry{}, ErrMailbox
	default:
	}
	return h.node.handleEntryRequest()
}

// SendNewPeer is the NewPeer message: fire-and-forget (no acknowledgment is
// returned), appends peer to the target's peer list before returning.
// Duplicates are tolerated.
func (h NodeHandle) SendNewPeer(peer NodeHandle) {
	h.node.addPeer(peer)
}

// SendNewPeerBatch is the NewPeerBatch message: fire-and-forget, appends
// the batch in order.
func (h NodeHandle) SendNewPeerBatch(batch []NodeHandle) {
	h.node.addPeerBatch(batch)
}

// SendTransaction is the Transaction message: fire-and-forget, toggles one
// random oddsketch bit and recomputes mass. seed is advisory.
func (h NodeHandle) SendTransaction(seed uint64) {
	h.node.applyTransaction(seed)
}

// PeerCount reports the target node's current peer list length. Ambient
// debug accessor, not part of the core protocol surface.
func (h NodeHandle) PeerCount() int {
	return h.node.peerCount()
}

// HasPeer reports whether the target node lists the given peer. Ambient
// debug accessor used by tracker-completeness tests.
func (h NodeHandle) HasPeer(id uuid.UUID) bool {
	return h.node.hasPeer(id)
}
