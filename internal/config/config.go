// Package config holds the compile-time constants of the EmPower1 ledger
// kernel and the logger factory shared across packages.
package config

import "github.com/sirupsen/logrus"

// Config bundles the tunable constants of the kernel. Callers may build a
// Config with other values; cmd/empower1ledgerd uses Default() and exposes
// no flags for them. The zero value is not valid, use Default().
type Config struct {
	// EpochHeight is the number of blocks in one epoch and the length of
	// each validator schedule array.
	EpochHeight int64
	// BlockChainWorth is the initial supply credited to GENESIS at genesis.
	BlockChainWorth float64
	// Genesis is the synthetic origin account id.
	Genesis string
	// RewardRatePerEpoch is the fraction of staked balance paid out to a
	// slot's validator at the start of every epoch.
	RewardRatePerEpoch float64
}

// Default returns the standard kernel constants: a 10-block epoch, 1000 unit
// initial supply, "Genesis" as the genesis account, and a 0.00001 per-epoch
// reward rate.
func Default() Config {
	return Config{
		EpochHeight:        10,
		BlockChainWorth:    1000.0,
		Genesis:            "Genesis",
		RewardRatePerEpoch: 0.00001,
	}
}

// NewLogger returns a logrus logger prefixed with component, the pattern
// used throughout the kernel so every subsystem's log lines are attributable.
func NewLogger(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}
