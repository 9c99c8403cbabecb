package wallet

import (
	"fmt"
	"sort"
	"sync"

	"empower1.com/empower1ledger/internal/config"
	"empower1.com/empower1ledger/internal/ledgererrors"
)

var log = config.NewLogger("wallet")

// Set is an unordered mapping from user id to Wallet. It is created empty
// except for the configured genesis account; entries are created on first
// receive of a transfer and are never deleted. Every mutator is atomic: it
// either fully applies and returns success, or leaves the set unmodified and
// returns a descriptive error. The zero value is not usable; use NewSet.
type Set struct {
	mu      sync.RWMutex
	wallets map[string]*Wallet
}

// NewSet returns a WalletSet with a single funded genesis account.
func NewSet(genesis string, initialSupply float64) *Set {
	return &Set{
		wallets: map[string]*Wallet{
			genesis: NewWallet(initialSupply),
		},
	}
}

// Get returns a copy of user's wallet, or ledgererrors.ErrUserNotFound.
func (s *Set) Get(user string) (*Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[user]
	if !ok {
		return nil, fmt.Errorf("%s: %w", user, ledgererrors.ErrUserNotFound)
	}
	return w.Clone(), nil
}

// SortedUserIDs returns every known user id, sorted ascending. Consensus-
// relevant iteration (Merkle leaf ordering, stake pool enumeration) must go
// through a deterministic order like this one, never raw map ranging:
// non-deterministic map iteration would otherwise make consensus-relevant
// output depend on Go's randomized map order.
func (s *Set) SortedUserIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.wallets))
	for id := range s.wallets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a deep copy of the entire wallet set, keyed by user id.
// Used by the hashing package to compute the Merkle state root without
// holding the set's lock for the duration of the tree build.
func (s *Set) Snapshot() map[string]*Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Wallet, len(s.wallets))
	for id, w := range s.wallets {
		out[id] = w.Clone()
	}
	return out
}

func (s *Set) getOrCreateLocked(user string) *Wallet {
	w, ok := s.wallets[user]
	if !ok {
		w = NewWallet(0)
		s.wallets[user] = w
	}
	return w
}

// Transfer debits amount+fee from sender and credits amount to receiver,
// creating receiver's wallet at balance 0 if absent. The fee is burned here;
// the block pipeline credits the sum of a block's fees to its validator
// separately.
func (s *Set) Transfer(sender, receiver string, amount, fee float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	senderWallet, ok := s.wallets[sender]
	if !ok {
		return fmt.Errorf("sender %s: %w", sender, ledgererrors.ErrUserNotFound)
	}
	if senderWallet.Balance < amount+fee {
		return fmt.Errorf("sender %s: %w", sender, ledgererrors.ErrInsufficientBalance)
	}

	senderWallet.Balance -= amount + fee
	receiverWallet := s.getOrCreateLocked(receiver)
	receiverWallet.Balance += amount
	return nil
}

// Stake debits amount+fee from user's balance and credits amount to staked.
func (s *Set) Stake(user string, amount, fee float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[user]
	if !ok {
		return fmt.Errorf("%s: %w", user, ledgererrors.ErrUserNotFound)
	}
	if w.Balance < amount+fee {
		return fmt.Errorf("%s: %w", user, ledgererrors.ErrInsufficientBalance)
	}
	w.Balance -= amount + fee
	w.Staked += amount
	return nil
}

// Unstake debits fee and staked from user, and appends a PendingUnstake
// effective two epochs after blockHeight's epoch.
func (s *Set) Unstake(user string, blockHeight, epochHeight int64, amount, fee float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[user]
	if !ok {
		return fmt.Errorf("%s: %w", user, ledgererrors.ErrUserNotFound)
	}
	if w.Staked < amount {
		return fmt.Errorf("%s: %w", user, ledgererrors.ErrInsufficientStake)
	}
	if w.Balance < fee {
		return fmt.Errorf("%s: %w", user, ledgererrors.ErrInsufficientFee)
	}

	w.Balance -= fee
	w.Staked -= amount
	effectiveEpoch := Epoch(blockHeight, epochHeight) + 2
	w.PendingUnstakes = append(w.PendingUnstakes, PendingUnstake{
		Amount:         amount,
		EffectiveEpoch: effectiveEpoch,
	})
	return nil
}

// ReturnStakes credits every wallet with any pending unstake whose effective
// epoch has arrived, popping from the front of each wallet's FIFO queue.
func (s *Set) ReturnStakes(epoch int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for user, w := range s.wallets {
		i := 0
		for i < len(w.PendingUnstakes) && w.PendingUnstakes[i].EffectiveEpoch <= epoch {
			w.Balance += w.PendingUnstakes[i].Amount
			i++
		}
		if i > 0 {
			log.WithField("user", user).WithField("count", i).Debug("returned matured pending unstakes")
			w.PendingUnstakes = w.PendingUnstakes[i:]
		}
	}
}

// StakePool returns a snapshot mapping of user to staked amount, restricted
// to users with positive stake.
func (s *Set) StakePool() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := make(map[string]float64)
	for user, w := range s.wallets {
		if w.Staked > 0 {
			pool[user] = w.Staked
		}
	}
	return pool
}

// Credit adds amount to user's balance unconditionally, creating the wallet
// if absent. Used by the block pipeline to pay validator rewards and fees,
// which are not failable operations.
func (s *Set) Credit(user string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(user).Balance += amount
}

// Debit subtracts amount from user's balance, failing if the user is absent
// or the balance would go negative.
func (s *Set) Debit(user string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[user]
	if !ok {
		return fmt.Errorf("%s: %w", user, ledgererrors.ErrUserNotFound)
	}
	if w.Balance < amount {
		return fmt.Errorf("%s: %w", user, ledgererrors.ErrInsufficientBalance)
	}
	w.Balance -= amount
	return nil
}

// Epoch returns the epoch containing blockHeight given epochHeight blocks
// per epoch.
func Epoch(blockHeight, epochHeight int64) int64 {
	return blockHeight / epochHeight
}
