package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empower1.com/empower1ledger/internal/config"
	"empower1.com/empower1ledger/internal/ledgererrors"
	"empower1.com/empower1ledger/internal/primitives"
)

func TestNewProducesSealedGenesisBlock(t *testing.T) {
	cfg := config.Default()
	c, err := New(cfg, "deadbeef", 0)
	require.NoError(t, err)

	assert.Equal(t, int64(1), c.Len())
	genesis, err := c.At(0)
	require.NoError(t, err)
	assert.Equal(t, "0", genesis.PreviousHash)
	assert.Equal(t, cfg.Genesis, genesis.Validator)
	assert.NotEmpty(t, genesis.Hash)
}

func TestAtOutOfRange(t *testing.T) {
	cfg := config.Default()
	c, err := New(cfg, "deadbeef", 0)
	require.NoError(t, err)

	_, err = c.At(5)
	assert.ErrorIs(t, err, ledgererrors.ErrChainTooShort)
}

func TestIsValidDetectsTamperedHash(t *testing.T) {
	cfg := config.Default()
	c, err := New(cfg, "deadbeef", 0)
	require.NoError(t, err)

	next := primitives.Block{
		Timestamp:    1,
		PreviousHash: c.Tip().Hash,
		Validator:    cfg.Genesis,
		StateRoot:    "deadbeef",
	}
	require.NoError(t, next.Seal())
	c.Append(next)

	valid, err := c.IsValid()
	require.NoError(t, err)
	assert.True(t, valid)

	tampered, err := c.At(1)
	require.NoError(t, err)
	tampered.Hash = "not-the-real-hash"
	c.blocks[1] = *tampered

	valid, err = c.IsValid()
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestIsValidDetectsBrokenPreviousHashLinkage(t *testing.T) {
	cfg := config.Default()
	c, err := New(cfg, "deadbeef", 0)
	require.NoError(t, err)

	next := primitives.Block{
		Timestamp:    1,
		PreviousHash: "not-the-tip",
		Validator:    cfg.Genesis,
		StateRoot:    "deadbeef",
	}
	require.NoError(t, next.Seal())
	c.Append(next)

	valid, err := c.IsValid()
	require.NoError(t, err)
	assert.False(t, valid)
}
