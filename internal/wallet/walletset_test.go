package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empower1.com/empower1ledger/internal/ledgererrors"
)

func TestNewSetFundsOnlyGenesis(t *testing.T) {
	set := NewSet("Genesis", 1000.0)

	genesis, err := set.Get("Genesis")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, genesis.Balance)

	_, err = set.Get("Alice")
	assert.ErrorIs(t, err, ledgererrors.ErrUserNotFound)
}

func TestTransferDebitsAndCredits(t *testing.T) {
	set := NewSet("Genesis", 1000.0)

	require.NoError(t, set.Transfer("Genesis", "Alice", 100.0, 1.0))

	genesis, err := set.Get("Genesis")
	require.NoError(t, err)
	assert.Equal(t, 899.0, genesis.Balance)

	alice, err := set.Get("Alice")
	require.NoError(t, err)
	assert.Equal(t, 100.0, alice.Balance)
}

func TestTransferInsufficientBalanceLeavesStateUnchanged(t *testing.T) {
	set := NewSet("Genesis", 100.0)

	err := set.Transfer("Genesis", "Alice", 200.0, 0)
	assert.ErrorIs(t, err, ledgererrors.ErrInsufficientBalance)

	genesis, err := set.Get("Genesis")
	require.NoError(t, err)
	assert.Equal(t, 100.0, genesis.Balance)

	_, err = set.Get("Alice")
	assert.ErrorIs(t, err, ledgererrors.ErrUserNotFound)
}

func TestTransferUnknownSender(t *testing.T) {
	set := NewSet("Genesis", 100.0)
	err := set.Transfer("Nobody", "Alice", 1, 0)
	assert.ErrorIs(t, err, ledgererrors.ErrUserNotFound)
}

func TestStakeMovesBalanceToStaked(t *testing.T) {
	set := NewSet("Genesis", 1000.0)
	require.NoError(t, set.Stake("Genesis", 300.0, 1.0))

	w, err := set.Get("Genesis")
	require.NoError(t, err)
	assert.Equal(t, 699.0, w.Balance)
	assert.Equal(t, 300.0, w.Staked)
}

func TestStakeInsufficientBalance(t *testing.T) {
	set := NewSet("Genesis", 100.0)
	err := set.Stake("Genesis", 200.0, 0)
	assert.ErrorIs(t, err, ledgererrors.ErrInsufficientBalance)
}

func TestUnstakeSchedulesPendingUnstakeTwoEpochsOut(t *testing.T) {
	set := NewSet("Genesis", 1000.0)
	require.NoError(t, set.Stake("Genesis", 500.0, 0))

	// block height 5, epoch height 10 => epoch(5) == 0 => effective_epoch == 2
	require.NoError(t, set.Unstake("Genesis", 5, 10, 200.0, 1.0))

	w, err := set.Get("Genesis")
	require.NoError(t, err)
	assert.Equal(t, 300.0, w.Staked)
	assert.Equal(t, 499.0, w.Balance) // 500 left after stake, minus the 1.0 fee
	require.Len(t, w.PendingUnstakes, 1)
	assert.Equal(t, int64(2), w.PendingUnstakes[0].EffectiveEpoch)
	assert.Equal(t, 200.0, w.PendingUnstakes[0].Amount)
}

func TestUnstakeInsufficientStake(t *testing.T) {
	set := NewSet("Genesis", 1000.0)
	err := set.Unstake("Genesis", 0, 10, 1.0, 0)
	assert.ErrorIs(t, err, ledgererrors.ErrInsufficientStake)
}

func TestReturnStakesCreditsMaturedEntriesOnly(t *testing.T) {
	set := NewSet("Genesis", 1000.0)
	require.NoError(t, set.Stake("Genesis", 500.0, 0))
	require.NoError(t, set.Unstake("Genesis", 0, 10, 100.0, 0))  // effective epoch 2
	require.NoError(t, set.Unstake("Genesis", 15, 10, 50.0, 0)) // effective epoch 3

	set.ReturnStakes(2)
	w, err := set.Get("Genesis")
	require.NoError(t, err)
	assert.Equal(t, 600.0, w.Balance) // 500 left + 100 matured
	require.Len(t, w.PendingUnstakes, 1)
	assert.Equal(t, int64(3), w.PendingUnstakes[0].EffectiveEpoch)

	set.ReturnStakes(3)
	w, err = set.Get("Genesis")
	require.NoError(t, err)
	assert.Equal(t, 650.0, w.Balance)
	assert.Empty(t, w.PendingUnstakes)
}

func TestStakePoolExcludesZeroStake(t *testing.T) {
	set := NewSet("Genesis", 1000.0)
	require.NoError(t, set.Transfer("Genesis", "Alice", 100, 0))
	require.NoError(t, set.Stake("Genesis", 400, 0))

	pool := set.StakePool()
	assert.Equal(t, map[string]float64{"Genesis": 400}, pool)
}

func TestSortedUserIDsIsDeterministic(t *testing.T) {
	set := NewSet("Genesis", 1000.0)
	require.NoError(t, set.Transfer("Genesis", "Zed", 1, 0))
	require.NoError(t, set.Transfer("Genesis", "Amy", 1, 0))

	ids := set.SortedUserIDs()
	assert.Equal(t, []string{"Amy", "Genesis", "Zed"}, ids)
}
