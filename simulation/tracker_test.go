package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTrackerFanOut covers spec scenario 5: 4 nodes, tracker started once,
// every node's peer list has length 3 and contains every other node
// exactly once.
func TestTrackerFanOut(t *testing.T) {
	const n = 4
	nodes := make([]*Node, n)
	handles := make([]NodeHandle, n)
	for i := range nodes {
		node, err := NewNode(1, uint64(time.Hour.Milliseconds()), 0, 4)
		require.NoError(t, err)
		nodes[i] = node
		handles[i] = node.Start()
	}

	NewTracker(handles).Start()

	for i, h := range handles {
		assert.Equal(t, n-1, h.PeerCount(), "node %d peer count", i)
		for j, other := range handles {
			if i == j {
				continue
			}
			assert.True(t, h.HasPeer(other.ID()), "node %d should list node %d as a peer", i, j)
		}
	}
}
