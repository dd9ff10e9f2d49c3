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

import "github.com/probechain/oddgossip/log"

// Tracker is an ephemeral actor: it holds the full node handle list exactly
// long enough to broadcast it once, then idles for the rest of the
// simulation's life.
type Tracker struct {
	nodes []NodeHandle
	log   *log.Logger
}

// NewTracker constructs a Tracker over the given node handles.
func NewTracker(nodes []NodeHandle) *Tracker {
	return &Tracker{
		nodes: nodes,
		log:   log.New("component", "tracker"),
	}
}

// TrackerHandle is an opaque marker for a started Tracker. The tracker
// exposes no operations once bootstrap completes.
type TrackerHandle struct{}

// Start broadcasts, to every node, a NewPeerBatch containing every other
// node exactly once, then returns. Delivery failures are not retried; the
// spec treats tracker bootstrap as best-effort on a reliable local
// transport.
func (t *Tracker) Start() TrackerHandle {
	for i, node := range t.nodes {
		batch := make([]NodeHandle, 0, len(t.nodes)-1)
		for j, peer := range t.nodes {
			if i == j {
				continue
			}
			batch = append(batch, peer)
		}
		node.SendNewPeerBatch(batch)
	}
	t.log.Info("bootstrap complete", "nodes", len(t.nodes))
	return TrackerHandle{}
}
