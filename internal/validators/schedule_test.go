package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsensusBlockBoundaries(t *testing.T) {
	const epochHeight = 10
	assert.Equal(t, int64(0), ConsensusBlock(0, epochHeight))
	assert.Equal(t, int64(0), ConsensusBlock(1, epochHeight))
	assert.Equal(t, int64(epochHeight-1), ConsensusBlock(2, epochHeight))
	assert.Equal(t, int64(2*epochHeight-1), ConsensusBlock(3, epochHeight))
}

func TestNewScheduleAssignsGenesisToEverySlot(t *testing.T) {
	s := New("Genesis", 10)
	for _, v := range s.Current() {
		assert.Equal(t, "Genesis", v)
	}
	for _, v := range s.Next() {
		assert.Equal(t, "Genesis", v)
	}
}

func TestRotateWithNoStakeAssignsGenesis(t *testing.T) {
	s := New("Genesis", 10)
	s.Rotate("Genesis", map[string]float64{}, "seed")
	for _, v := range s.Next() {
		assert.Equal(t, "Genesis", v)
	}
}

func TestRotateWithStakeIsDeterministic(t *testing.T) {
	stakePool := map[string]float64{"Alice": 100, "Bob": 50, "Carol": 25}

	s1 := New("Genesis", 10)
	s1.Rotate("Genesis", stakePool, "fixed-seed")

	s2 := New("Genesis", 10)
	s2.Rotate("Genesis", stakePool, "fixed-seed")

	assert.Equal(t, s1.Next(), s2.Next())
}

func TestRotatePromotesNextToCurrent(t *testing.T) {
	s := New("Genesis", 10)
	s.Rotate("Genesis", map[string]float64{"Alice": 1}, "seed-a")
	firstNext := s.Next()

	s.Rotate("Genesis", map[string]float64{"Alice": 1}, "seed-b")
	assert.Equal(t, firstNext, s.Current())
}
