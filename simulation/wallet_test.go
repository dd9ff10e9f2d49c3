package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletBroadcastsToSample(t *testing.T) {
	nodes := make([]*Node, 3)
	handles := make([]NodeHandle, 3)
	for i := range nodes {
		node, err := NewNode(1, uint64(time.Hour.Milliseconds()), 0, 4)
		require.NoError(t, err)
		nodes[i] = node
		handles[i] = node.Start()
	}

	wallet := NewWallet(handles, 2, 10)
	wh := wallet.Start()

	time.Sleep(60 * time.Millisecond)

	total := 0
	for _, h := range handles {
		entry, err := h.RequestEntry(context.Background())
		require.NoError(t, err)
		total += entry.Oddsketch.PopCount()
	}
	assert.Greater(t, total, 0, "wallet should have injected at least one transaction")
	assert.Greater(t, wh.RecentSeedCount(), 0)
}

func TestWalletSampleClampsToNodeCount(t *testing.T) {
	nodes := make([]*Node, 2)
	handles := make([]NodeHandle, 2)
	for i := range nodes {
		node, err := NewNode(1, uint64(time.Hour.Milliseconds()), 0, 4)
		require.NoError(t, err)
		nodes[i] = node
		handles[i] = node.Start()
	}

	// Fan larger than node count: broadcast must clamp to len(nodes).
	wallet := NewWallet(handles, 10, 10)
	wallet.broadcast()

	total := 0
	for _, h := range handles {
		entry, err := h.RequestEntry(context.Background())
		require.NoError(t, err)
		total += entry.Oddsketch.PopCount()
	}
	assert.LessOrEqual(t, total, 2)
}
