// Package ledgererrors defines the sentinel error kinds returned by the
// ledger kernel. Callers should compare with errors.Is; wrapped context is
// added with fmt.Errorf("...: %w", ...) at each layer.
package ledgererrors

import "errors"

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrInsufficientStake        = errors.New("insufficient stake")
	ErrInsufficientFee          = errors.New("insufficient fee")
	ErrContractNotFound         = errors.New("contract not found")
	ErrContractExecutionFailure = errors.New("contract execution failed")
	ErrNoValidators             = errors.New("no validators available for slot")
	ErrBlockHashMismatch        = errors.New("block hash mismatch")
	ErrPreviousHashMismatch     = errors.New("previous hash mismatch")
	ErrBlockProductionFailure   = errors.New("block production failed")
	ErrReentrantContractCall    = errors.New("re-entrant contract call rejected")
	ErrChainTooShort            = errors.New("chain too short for epoch seed lookup")
)
