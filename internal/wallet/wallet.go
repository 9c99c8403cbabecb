// Package wallet holds the per-user ledger state (balance, stake, pending
// unstakes) and the atomic mutators that keep it consistent, plus the
// deterministic sorted-iteration helpers consensus-relevant code needs.
package wallet

// PendingUnstake is a queued withdrawal of staked amount that becomes
// spendable once the chain reaches EffectiveEpoch.
type PendingUnstake struct {
	Amount         float64 `json:"amount"`
	EffectiveEpoch int64   `json:"effective_epoch"`
}

// Wallet is a mutable per-user record. Invariants: Balance >= 0, Staked >= 0,
// PendingUnstakes ordered by non-decreasing EffectiveEpoch (true by
// construction since unstakes are appended in block order and epochs only
// advance). Field order (Balance, Staked, PendingUnstakes) is the canonical
// leaf encoding order used by the hashing package.
type Wallet struct {
	Balance         float64          `json:"balance"`
	Staked          float64          `json:"staked"`
	PendingUnstakes []PendingUnstake `json:"pending_unstakes"`
}

// NewWallet returns a fresh wallet with the given opening balance. The
// pending-unstake queue starts as an empty (non-nil) slice so the canonical
// leaf encoding always has a "[]" rather than a "null" in that position.
func NewWallet(balance float64) *Wallet {
	return &Wallet{Balance: balance, PendingUnstakes: []PendingUnstake{}}
}

// Clone returns a deep copy, used by WalletSet mutators to stage a change
// before committing it.
func (w *Wallet) Clone() *Wallet {
	clone := *w
	if w.PendingUnstakes != nil {
		clone.PendingUnstakes = make([]PendingUnstake, len(w.PendingUnstakes))
		copy(clone.PendingUnstakes, w.PendingUnstakes)
	}
	return &clone
}
