// Package chain holds the append-only sequence of sealed blocks, including
// genesis construction.
package chain

import (
	"fmt"

	"empower1.com/empower1ledger/internal/config"
	"empower1.com/empower1ledger/internal/ledgererrors"
	"empower1.com/empower1ledger/internal/primitives"
)

var log = config.NewLogger("chain")

// Chain is an append-only vector of sealed blocks. Index 0 is always the
// genesis block. The zero value is not usable; use New.
type Chain struct {
	blocks []primitives.Block
}

// New constructs a chain whose genesis block carries a single transfer from
// cfg.Genesis to the synthetic "System" account for the full initial supply,
// and commits stateRoot, the Merkle root of the caller's genesis WalletSet.
// The transfer is recorded in the block only; New applies it to no wallet
// set. previous_hash is the literal string "0".
func New(cfg config.Config, stateRoot string, timestamp int64) (*Chain, error) {
	genesis := primitives.Block{
		Timestamp: timestamp,
		Transactions: []primitives.Transaction{
			primitives.NewTransfer(cfg.Genesis, "System", cfg.BlockChainWorth, 0),
		},
		PreviousHash: "0",
		Validator:    cfg.Genesis,
		StateRoot:    stateRoot,
		TotalFees:    0,
	}
	if err := genesis.Seal(); err != nil {
		return nil, fmt.Errorf("sealing genesis block: %w", err)
	}

	log.WithField("hash", genesis.Hash).Info("constructed genesis block")
	return &Chain{blocks: []primitives.Block{genesis}}, nil
}

// Len returns the number of blocks, including genesis.
func (c *Chain) Len() int64 {
	return int64(len(c.blocks))
}

// At returns the block at idx, or ledgererrors.ErrChainTooShort.
func (c *Chain) At(idx int64) (*primitives.Block, error) {
	if idx < 0 || idx >= int64(len(c.blocks)) {
		return nil, fmt.Errorf("index %d of %d: %w", idx, len(c.blocks), ledgererrors.ErrChainTooShort)
	}
	b := c.blocks[idx]
	return &b, nil
}

// Tip returns the most recently appended block.
func (c *Chain) Tip() *primitives.Block {
	b := c.blocks[len(c.blocks)-1]
	return &b
}

// Append adds block as the new tip, without validating it; callers
// (the block pipeline) are responsible for validating before appending.
func (c *Chain) Append(block primitives.Block) {
	c.blocks = append(c.blocks, block)
}

// IsValid reports whether every block's stored hash matches its recomputed
// hash and every block's previous_hash matches its predecessor's hash.
func (c *Chain) IsValid() (bool, error) {
	for i := 1; i < len(c.blocks); i++ {
		current := c.blocks[i]
		previous := c.blocks[i-1]

		recomputed, err := current.ComputeHash()
		if err != nil {
			return false, err
		}
		if current.Hash != recomputed {
			return false, nil
		}
		if current.PreviousHash != previous.Hash {
			return false, nil
		}
	}
	return true, nil
}
