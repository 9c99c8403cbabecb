package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealIsDeterministic(t *testing.T) {
	b1 := Block{
		Timestamp:    1000,
		Transactions: []Transaction{NewTransfer("Genesis", "Alice", 100, 1)},
		PreviousHash: "0",
		Validator:    "Genesis",
		StateRoot:    "deadbeef",
		TotalFees:    1,
	}
	b2 := b1

	require.NoError(t, b1.Seal())
	require.NoError(t, b2.Seal())
	assert.Equal(t, b1.Hash, b2.Hash)
	assert.NotEmpty(t, b1.Hash)
}

func TestSealChangesWithAnyField(t *testing.T) {
	base := Block{
		Timestamp:    1000,
		Transactions: []Transaction{NewTransfer("Genesis", "Alice", 100, 1)},
		PreviousHash: "0",
		Validator:    "Genesis",
		StateRoot:    "deadbeef",
		TotalFees:    1,
	}
	require.NoError(t, base.Seal())

	changed := base
	changed.TotalFees = 2
	require.NoError(t, changed.Seal())

	assert.NotEqual(t, base.Hash, changed.Hash)
}

func TestComputeHashDoesNotMutateBlock(t *testing.T) {
	b := Block{Timestamp: 1, PreviousHash: "0", Validator: "Genesis", StateRoot: "x"}
	h, err := b.ComputeHash()
	require.NoError(t, err)
	assert.NotEmpty(t, h)
	assert.Empty(t, b.Hash)
}
