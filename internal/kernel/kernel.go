// Package kernel wires the wallet set, validator schedule, chain, and
// contract host together into the block pipeline and epoch engine: the
// state-machine core the rest of the system drives through the facade.
package kernel

import (
	"context"
	"fmt"
	"sync"

	"empower1.com/empower1ledger/internal/chain"
	"empower1.com/empower1ledger/internal/config"
	"empower1.com/empower1ledger/internal/contracts"
	"empower1.com/empower1ledger/internal/hashing"
	"empower1.com/empower1ledger/internal/ledgererrors"
	"empower1.com/empower1ledger/internal/primitives"
	"empower1.com/empower1ledger/internal/validators"
	"empower1.com/empower1ledger/internal/wallet"
)

var log = config.NewLogger("kernel")

// Kernel owns every piece of ledger state exclusively: the wallet set, the
// chain, the validator schedule, and the contract registry/storage. All
// mutating entry points take the same lock, so a contract call's transient
// exclusive kernel reference never aliases with another in-flight mutation.
type Kernel struct {
	mu sync.Mutex

	cfg      config.Config
	chain    *chain.Chain
	wallets  *wallet.Set
	schedule *validators.Schedule
	registry *contracts.Registry
	storage  *contracts.Storage
	host     *contracts.Host
}

// New builds a Kernel at genesis: a funded GENESIS wallet, a one-block chain,
// and an all-genesis validator schedule.
func New(ctx context.Context, cfg config.Config, genesisTimestamp int64) (*Kernel, error) {
	wallets := wallet.NewSet(cfg.Genesis, cfg.BlockChainWorth)

	tree, err := hashing.BuildTree(wallets.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("building genesis state root: %w", err)
	}

	ch, err := chain.New(cfg, tree.Root(), genesisTimestamp)
	if err != nil {
		return nil, err
	}

	host, err := contracts.NewHost(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting contract host: %w", err)
	}

	return &Kernel{
		cfg:      cfg,
		chain:    ch,
		wallets:  wallets,
		schedule: validators.New(cfg.Genesis, cfg.EpochHeight),
		registry: contracts.NewRegistry(),
		storage:  contracts.NewStorage(),
		host:     host,
	}, nil
}

// Close releases the contract host's runtime.
func (k *Kernel) Close(ctx context.Context) error {
	return k.host.Close(ctx)
}

// ChainLength returns the number of blocks in the chain, including genesis.
func (k *Kernel) ChainLength() int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.chain.Len()
}

// Wallet returns a copy of user's wallet.
func (k *Kernel) Wallet(user string) (*wallet.Wallet, error) {
	return k.wallets.Get(user)
}

// StateRoot recomputes the current Merkle state root over the live wallet
// set, for callers that want it outside of block production.
func (k *Kernel) StateRoot() (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	tree, err := hashing.BuildTree(k.wallets.Snapshot())
	if err != nil {
		return "", err
	}
	return tree.Root(), nil
}

// MerkleProof returns an inclusion proof for user against the current wallet
// set, along with the root it is valid against.
func (k *Kernel) MerkleProof(user string) ([]hashing.ProofStep, string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	tree, err := hashing.BuildTree(k.wallets.Snapshot())
	if err != nil {
		return nil, "", err
	}
	proof, ok := tree.Proof(user)
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", user, ledgererrors.ErrUserNotFound)
	}
	return proof, tree.Root(), nil
}

// IsValid runs the chain validity check: every block's stored hash
// and previous-hash linkage must check out.
func (k *Kernel) IsValid() (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.chain.IsValid()
}

// Headers returns a copy of every block from height fromHeight up to the
// current tip. chain.Chain carries no synchronization of its own, so callers
// outside this package (the facade) must go through here rather than reach
// into k.chain directly.
func (k *Kernel) Headers(fromHeight int64) ([]primitives.Block, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	length := k.chain.Len()
	headers := make([]primitives.Block, 0, length-fromHeight)
	for i := fromHeight; i < length; i++ {
		b, err := k.chain.At(i)
		if err != nil {
			return nil, err
		}
		headers = append(headers, *b)
	}
	return headers, nil
}

// ProduceBlock runs the epoch hook, applies transactions in order, and (on
// full success) seals and appends the resulting block. A transaction failure
// mid-block leaves every earlier mutation in place and does not append a
// block — this is a known limitation of the design, not a bug to paper over.
func (k *Kernel) ProduceBlock(ctx context.Context, transactions []primitives.Transaction, timestamp int64) (*primitives.Block, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	height := k.chain.Len()
	k.runEpochHookLocked(height)

	slot := height % k.cfg.EpochHeight
	validator := k.schedule.ValidatorForSlot(slot)
	if validator == "" {
		return nil, ledgererrors.ErrNoValidators
	}

	totalFees := 0.0
	for i, tx := range transactions {
		fee, err := k.applyTransactionLocked(ctx, tx, height)
		if err != nil {
			return nil, fmt.Errorf("transaction %d (%s): %w", i, tx.Kind, err)
		}
		totalFees += fee
	}

	tree, err := hashing.BuildTree(k.wallets.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("recomputing state root: %w", err)
	}

	block := primitives.Block{
		Timestamp:    timestamp,
		Transactions: transactions,
		PreviousHash: k.chain.Tip().Hash,
		Validator:    validator,
		StateRoot:    tree.Root(),
		TotalFees:    totalFees,
	}
	if err := block.Seal(); err != nil {
		return nil, fmt.Errorf("sealing block: %w: %v", ledgererrors.ErrBlockProductionFailure, err)
	}

	k.wallets.Credit(validator, totalFees)
	k.chain.Append(block)

	log.WithField("height", height+1).WithField("validator", validator).WithField("txs", len(transactions)).Info("produced block")
	return &block, nil
}

// ProcessBlock validates an externally received block (hash, previous-hash
// linkage, epoch hook) and, if it checks out, applies its transactions the
// same way ProduceBlock does rather than trusting the sender's bookkeeping.
func (k *Kernel) ProcessBlock(ctx context.Context, block primitives.Block) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	height := k.chain.Len()
	k.runEpochHookLocked(height)

	recomputed, err := block.ComputeHash()
	if err != nil {
		return err
	}
	if block.Hash != recomputed {
		return ledgererrors.ErrBlockHashMismatch
	}
	if block.PreviousHash != k.chain.Tip().Hash {
		return ledgererrors.ErrPreviousHashMismatch
	}

	totalFees := 0.0
	for i, tx := range block.Transactions {
		fee, err := k.applyTransactionLocked(ctx, tx, height)
		if err != nil {
			return fmt.Errorf("transaction %d (%s): %w", i, tx.Kind, err)
		}
		totalFees += fee
	}

	k.wallets.Credit(block.Validator, totalFees)
	k.chain.Append(block)
	return nil
}

// runEpochHookLocked performs the epoch-boundary sequence (reward payout,
// schedule rotation, stake maturation) when height is a positive multiple of
// EpochHeight. Callers must already hold k.mu.
func (k *Kernel) runEpochHookLocked(height int64) {
	if height == 0 || height%k.cfg.EpochHeight != 0 {
		return
	}

	epoch := validators.Epoch(height, k.cfg.EpochHeight)

	for _, user := range k.schedule.Current() {
		w, err := k.wallets.Get(user)
		if err != nil {
			continue
		}
		k.wallets.Credit(user, w.Staked*k.cfg.RewardRatePerEpoch)
	}

	seed := k.epochSeedLocked(epoch + 1)
	k.schedule.Rotate(k.cfg.Genesis, k.wallets.StakePool(), seed)
	k.wallets.ReturnStakes(epoch)

	log.WithField("epoch", epoch).Info("ran epoch boundary hook")
}

// epochSeedLocked resolves epoch_seed(e): "0" for e < 2, otherwise the hash
// of the block at validators.ConsensusBlock(e), the last block of epoch e-2.
func (k *Kernel) epochSeedLocked(e int64) string {
	if e < 2 {
		return "0"
	}
	idx := validators.ConsensusBlock(e, k.cfg.EpochHeight)
	b, err := k.chain.At(idx)
	if err != nil {
		log.WithField("epoch", e).WithField("index", idx).Warn("chain too short for epoch seed, falling back to zero seed")
		return "0"
	}
	return b.Hash
}

// applyTransactionLocked dispatches a single transaction and returns its
// fee contribution to the block total. Callers must already hold k.mu.
func (k *Kernel) applyTransactionLocked(ctx context.Context, tx primitives.Transaction, height int64) (float64, error) {
	switch tx.Kind {
	case primitives.KindTransfer:
		if tx.Transfer == nil {
			return 0, fmt.Errorf("transfer transaction missing body")
		}
		if err := k.wallets.Transfer(tx.Sender, tx.Transfer.Receiver, tx.Transfer.Amount, tx.Fee); err != nil {
			return 0, err
		}
		return tx.Fee, nil

	case primitives.KindStake:
		if tx.Stake == nil {
			return 0, fmt.Errorf("stake transaction missing body")
		}
		if err := k.wallets.Stake(tx.Sender, tx.Stake.Amount, tx.Fee); err != nil {
			return 0, err
		}
		return tx.Fee, nil

	case primitives.KindUnstake:
		if tx.Unstake == nil {
			return 0, fmt.Errorf("unstake transaction missing body")
		}
		if err := k.wallets.Unstake(tx.Sender, height, k.cfg.EpochHeight, tx.Unstake.Amount, tx.Fee); err != nil {
			return 0, err
		}
		return tx.Fee, nil

	case primitives.KindDeployContract:
		if tx.DeployContract == nil {
			return 0, fmt.Errorf("deploy_contract transaction missing body")
		}
		if err := k.wallets.Debit(tx.Sender, tx.Fee); err != nil {
			return 0, err
		}
		address := k.registry.Deploy(tx.DeployContract.Code)
		log.WithField("address", address).WithField("sender", tx.Sender).Info("deployed contract")
		return tx.Fee, nil

	case primitives.KindCallContract:
		if tx.CallContract == nil {
			return 0, fmt.Errorf("call_contract transaction missing body")
		}
		if err := k.wallets.Debit(tx.Sender, tx.Fee); err != nil {
			return 0, err
		}
		code, err := k.registry.Code(tx.CallContract.ContractAddress)
		if err != nil {
			return 0, err
		}
		if err := k.host.Execute(ctx, code, tx.CallContract.ContractAddress, tx.Sender, height, k.cfg.EpochHeight, k.wallets, k.storage); err != nil {
			return 0, err
		}
		return tx.Fee, nil

	default:
		return 0, fmt.Errorf("unknown transaction kind %q", tx.Kind)
	}
}
