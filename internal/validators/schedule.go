// Package validators implements the two-epoch stake-weighted validator
// rotation: a current, already-active slot assignment and a next one
// computed ahead of time from the stake pool and a seed drawn from chain
// history.
package validators

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
	"strconv"

	"empower1.com/empower1ledger/internal/hashing"
)

// Schedule holds the validator assigned to each slot of the current epoch
// and of the epoch being prepared. Both arrays always have EpochHeight
// entries; a fresh Schedule assigns every slot to genesis until the first
// rotation runs.
type Schedule struct {
	epochHeight int64
	current     []string
	next        []string
}

// New returns a Schedule with every slot, in both epochs, assigned to
// genesis.
func New(genesis string, epochHeight int64) *Schedule {
	current := make([]string, epochHeight)
	next := make([]string, epochHeight)
	for i := range current {
		current[i] = genesis
		next[i] = genesis
	}
	return &Schedule{epochHeight: epochHeight, current: current, next: next}
}

// Current returns the validator assignment for the epoch presently active.
func (s *Schedule) Current() []string {
	out := make([]string, len(s.current))
	copy(out, s.current)
	return out
}

// Next returns the validator assignment being prepared for the epoch after
// the current one.
func (s *Schedule) Next() []string {
	out := make([]string, len(s.next))
	copy(out, s.next)
	return out
}

// ValidatorForSlot returns the validator assigned to slotInEpoch of the
// currently active epoch.
func (s *Schedule) ValidatorForSlot(slotInEpoch int64) string {
	return s.current[slotInEpoch]
}

// Rotate promotes next into current, then recomputes next from stakePool and
// seed: one stake-weighted draw per slot, grounded on the same hash-to-u64
// draw the original validator-selection routine uses. genesis is returned
// for every slot when stakePool is empty (no one is staked yet).
func (s *Schedule) Rotate(genesis string, stakePool map[string]float64, seed string) {
	s.current, s.next = s.next, s.current

	totalStake := 0.0
	for _, stake := range stakePool {
		totalStake += stake
	}

	for slot := int64(0); slot < s.epochHeight; slot++ {
		s.next[slot] = drawValidator(genesis, stakePool, totalStake, seed, slot)
	}
}

// drawValidator performs one stake-weighted draw for slot, deterministic in
// seed and slot. Iteration over stakePool is over a sorted copy of its keys:
// consensus-relevant code must never depend on Go's randomized map order.
func drawValidator(genesis string, stakePool map[string]float64, totalStake float64, seed string, slot int64) string {
	if totalStake == 0 {
		return genesis
	}

	users := make([]string, 0, len(stakePool))
	for user := range stakePool {
		users = append(users, user)
	}
	sort.Strings(users)

	slotSeed := seed + strconv.FormatInt(slot, 10)
	digest := hashing.Hex([]byte(slotSeed))
	rawDigest, _ := hex.DecodeString(digest)
	seedValue := binary.LittleEndian.Uint64(rawDigest[:8])
	randomPoint := float64(seedValue)
	// Match the reference implementation's modulo-by-float semantics: reduce
	// the raw 64-bit draw into [0, totalStake) before the cumulative scan.
	randomPoint = floatMod(randomPoint, totalStake)

	cumulative := 0.0
	for _, user := range users {
		cumulative += stakePool[user]
		if cumulative >= randomPoint {
			return user
		}
	}
	return genesis
}

func floatMod(x, m float64) float64 {
	if m == 0 {
		return 0
	}
	return math.Mod(x, m)
}

// Epoch returns the epoch containing blockHeight.
func Epoch(blockHeight, epochHeight int64) int64 {
	return blockHeight / epochHeight
}

// ConsensusBlock returns the height of the block whose hash seeds the slot
// draw for epoch. Epochs 0 and 1 have no prior-epoch history to draw from
// and both map to block 0 (the kernel seeds them with the literal "0"
// rather than a block hash); from epoch 2 on it is the last block of epoch
// epoch-2, which is the epoch that has just completed when the draw runs,
// since Next is always being prepared one epoch ahead of Current.
func ConsensusBlock(epoch, epochHeight int64) int64 {
	if epoch < 2 {
		return 0
	}
	return (epoch-1)*epochHeight - 1
}
