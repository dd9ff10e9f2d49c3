package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probechain/oddgossip/consensus"
)

func TestStartSimulationValidatesArgs(t *testing.T) {
	node, err := NewNode(1, uint64(time.Hour.Milliseconds()), 0, 4)
	require.NoError(t, err)

	_, err = StartSimulation([]*Node{node}, 0, 100)
	assert.Error(t, err)

	_, err = StartSimulation([]*Node{node}, 1, 0)
	assert.Error(t, err)
}

// TestDistanceMatrixShape covers spec scenario 6: 5 nodes, all reachable,
// GetAllDistances returns exactly n*(n-1)/2 values each within
// [0, ODDSKETCH_LEN_BITS].
func TestDistanceMatrixShape(t *testing.T) {
	const n = 5
	nodes := make([]*Node, n)
	for i := range nodes {
		node, err := NewNode(1, uint64(time.Hour.Milliseconds()), 0, 4)
		require.NoError(t, err)
		nodes[i] = node
	}

	sys, err := StartSimulation(nodes, 1, uint64(time.Hour.Milliseconds()))
	require.NoError(t, err)

	ctx := context.Background()
	distances, err := sys.GetAllDistances(ctx)
	require.NoError(t, err)
	require.Len(t, distances, n*(n-1)/2)
	for _, d := range distances {
		assert.LessOrEqual(t, d, uint32(consensus.OddsketchLenBits))
	}
}

func TestGetAllEntriesDropsResponseErrors(t *testing.T) {
	good, err := NewNode(1, uint64(time.Hour.Milliseconds()), 0, 4)
	require.NoError(t, err)
	bad, err := NewNode(1, uint64(time.Hour.Milliseconds()), 100, 4)
	require.NoError(t, err)

	sys := &SystemAddrs{Nodes: []NodeHandle{good.Start(), bad.Start()}}

	entries, err := sys.GetAllEntries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHammingDistanceSymmetricAndZeroForSelf(t *testing.T) {
	var a, b consensus.Oddsketch
	a.ToggleBit(3)
	a.ToggleBit(500)
	b = a

	assert.EqualValues(t, 0, hammingDistance(a, b))
	assert.Equal(t, hammingDistance(a, b), hammingDistance(b, a))

	b.ToggleBit(7)
	assert.EqualValues(t, 1, hammingDistance(a, b))
}
