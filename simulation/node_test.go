package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probechain/oddgossip/consensus"
)

func TestNewNodeValidatesArgs(t *testing.T) {
	_, err := NewNode(1, 0, 0, 4)
	assert.Error(t, err)

	_, err = NewNode(1, 100, 0, 0)
	assert.Error(t, err)

	_, err = NewNode(1, 100, 0, 4)
	assert.NoError(t, err)
}

// TestLoneNodeStaysAtZero covers spec scenario 1: a single node with no
// peers and no wallet stays at an all-zero oddsketch and mass 0 across
// several heartbeats.
func TestLoneNodeStaysAtZero(t *testing.T) {
	node, err := NewNode(1, 10, 0, 4)
	require.NoError(t, err)
	handle := node.Start()

	time.Sleep(120 * time.Millisecond)

	ctx := context.Background()
	entry, err := handle.RequestEntry(ctx)
	require.NoError(t, err)
	assert.Equal(t, consensus.Oddsketch{}, entry.Oddsketch)
	assert.EqualValues(t, 0, entry.Mass)
}

func TestTransactionTogglesOddsketch(t *testing.T) {
	node, err := NewNode(1, uint64(time.Hour.Milliseconds()), 0, 4)
	require.NoError(t, err)
	handle := node.Start()

	handle.SendTransaction(1)

	entry, err := handle.RequestEntry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Oddsketch.PopCount())
	assert.EqualValues(t, 1, entry.Version)
}

func TestEntryRequestFaultInjection(t *testing.T) {
	node, err := NewNode(1, uint64(time.Hour.Milliseconds()), 100, 4)
	require.NoError(t, err)
	handle := node.Start()

	_, err = handle.RequestEntry(context.Background())
	assert.ErrorIs(t, err, ErrResponse)
}

func TestNewPeerAndPeerCount(t *testing.T) {
	a, err := NewNode(1, uint64(time.Hour.Milliseconds()), 0, 4)
	require.NoError(t, err)
	b, err := NewNode(1, uint64(time.Hour.Milliseconds()), 0, 4)
	require.NoError(t, err)

	ha, hb := a.Start(), b.Start()
	ha.SendNewPeer(hb)
	assert.Equal(t, 1, ha.PeerCount())
	assert.True(t, ha.HasPeer(hb.ID()))
}

// TestTwoNodeConvergence covers spec scenario 2: two nodes, wallet fan=1
// targeting node 0 only, converge to distance 0 within a few seconds with
// high probability.
func TestTwoNodeConvergence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping convergence test in short mode")
	}

	a, err := NewNode(4, 50, 0, 4)
	require.NoError(t, err)
	b, err := NewNode(4, 50, 0, 4)
	require.NoError(t, err)

	ha, hb := a.Start(), b.Start()
	NewTracker([]NodeHandle{ha, hb}).Start()

	// Mirror the scenario's "wallet fan=1 to node 0 only" by injecting
	// transactions directly into node 0, without a Wallet actor sampling
	// both nodes, so node 0 is deterministically the sole transaction
	// source.
	sys := &SystemAddrs{Nodes: []NodeHandle{ha, hb}}
	deadline := time.Now().Add(4 * time.Second)
	for time.Now().Before(deadline) {
		ha.SendTransaction(0)
		time.Sleep(25 * time.Millisecond)
	}

	// Quiesce for a few heartbeats so node 1's reconcile catches up with
	// the last transaction before distance is measured.
	time.Sleep(500 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	distances, err := sys.GetAllDistances(ctx)
	require.NoError(t, err)
	require.Len(t, distances, 1)
	assert.EqualValues(t, 0, distances[0])
}
