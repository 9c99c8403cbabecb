package contracts

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"empower1.com/empower1ledger/internal/config"
	"empower1.com/empower1ledger/internal/ledgererrors"
	"empower1.com/empower1ledger/internal/wallet"
)

var log = config.NewLogger("contracts")

// callContext is everything a single contract invocation needs to resolve
// env.* host calls: which wallet set to mutate, which contract's storage
// scope is active, and who the calling user is.
type callContext struct {
	wallets         *wallet.Set
	storage         *Storage
	contractAddress string
	sender          string
	blockHeight     int64
	epochHeight     int64
}

// handleTable hands out small integer handles for the lifetime of one
// contract call and resolves them back to a callContext. This replaces the
// source implementation's technique of splitting a raw Go/Rust pointer into
// two i32 halves: guest code only ever sees an opaque index, never a
// pointer, so a malicious or buggy guest cannot forge a handle into an
// arbitrary memory address.
type handleTable struct {
	mu      sync.Mutex
	entries map[uint64]*callContext
	next    uint64
}

func newHandleTable() *handleTable {
	return &handleTable{entries: make(map[uint64]*callContext)}
}

func (t *handleTable) register(cc *callContext) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	handle := t.next
	t.entries[handle] = cc
	return handle
}

func (t *handleTable) resolve(handle uint64) (*callContext, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cc, ok := t.entries[handle]
	return cc, ok
}

func (t *handleTable) release(handle uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, handle)
}

func splitHandle(handle uint64) (lo, hi int32) {
	return int32(uint32(handle)), int32(uint32(handle >> 32))
}

func joinHandle(lo, hi int32) uint64 {
	return uint64(uint32(lo)) | uint64(uint32(hi))<<32
}

// Host sandboxes guest WASM bytecode with wazero and exposes the env.*
// ledger operations a contract can call into. Only one call may be in flight
// at a time: the guest ABI re-enters the same kernel reference on the same
// goroutine, and the design forbids overlapping contract calls.
type Host struct {
	runtime wazero.Runtime
	handles *handleTable
	busy    atomic.Bool
}

// NewHost builds a Host and registers its env module. ctx is used only for
// the one-time runtime and host-module construction.
func NewHost(ctx context.Context) (*Host, error) {
	h := &Host{
		runtime: wazero.NewRuntime(ctx),
		handles: newHandleTable(),
	}

	builder := h.runtime.NewHostModuleBuilder("env")
	builder.NewFunctionBuilder().WithFunc(h.debug).Export("debug")
	builder.NewFunctionBuilder().WithFunc(h.getBalance).Export("get_balance")
	builder.NewFunctionBuilder().WithFunc(h.transfer).Export("transfer")
	builder.NewFunctionBuilder().WithFunc(h.store).Export("store")
	builder.NewFunctionBuilder().WithFunc(h.load).Export("load")
	builder.NewFunctionBuilder().WithFunc(h.stake).Export("stake")
	builder.NewFunctionBuilder().WithFunc(h.unstake).Export("unstake")

	if _, err := builder.Instantiate(ctx); err != nil {
		return nil, fmt.Errorf("instantiating env host module: %w", err)
	}
	return h, nil
}

// Close releases the underlying wazero runtime and any compiled modules.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

// Execute compiles and runs code's execute(handle_lo, handle_hi) entry
// point, with contractAddress's storage scope and sender as the calling
// user. A non-zero or trapping guest return is reported as
// ErrContractExecutionFailure; mutations already performed through host
// functions before the failure are NOT rolled back.
func (h *Host) Execute(ctx context.Context, code []byte, contractAddress, sender string, blockHeight, epochHeight int64, wallets *wallet.Set, storage *Storage) error {
	if !h.busy.CompareAndSwap(false, true) {
		return ledgererrors.ErrReentrantContractCall
	}
	defer h.busy.Store(false)

	compiled, err := h.runtime.CompileModule(ctx, code)
	if err != nil {
		return fmt.Errorf("compiling contract %s: %w: %v", contractAddress, ledgererrors.ErrContractExecutionFailure, err)
	}
	defer compiled.Close(ctx)

	mod, err := h.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		return fmt.Errorf("instantiating contract %s: %w: %v", contractAddress, ledgererrors.ErrContractExecutionFailure, err)
	}
	defer mod.Close(ctx)

	execute := mod.ExportedFunction("execute")
	if execute == nil {
		return fmt.Errorf("contract %s exports no execute function: %w", contractAddress, ledgererrors.ErrContractExecutionFailure)
	}

	cc := &callContext{
		wallets:         wallets,
		storage:         storage,
		contractAddress: contractAddress,
		sender:          sender,
		blockHeight:     blockHeight,
		epochHeight:     epochHeight,
	}
	handle := h.handles.register(cc)
	defer h.handles.release(handle)
	lo, hi := splitHandle(handle)

	results, err := execute.Call(ctx, uint64(uint32(lo)), uint64(uint32(hi)))
	if err != nil {
		return fmt.Errorf("contract %s trapped: %w: %v", contractAddress, ledgererrors.ErrContractExecutionFailure, err)
	}
	if len(results) > 0 && int32(results[0]) != 0 {
		return fmt.Errorf("contract %s returned non-zero status %d: %w", contractAddress, int32(results[0]), ledgererrors.ErrContractExecutionFailure)
	}
	return nil
}

func readMemString(mod api.Module, ptr, length int32) (string, bool) {
	b, ok := mod.Memory().Read(uint32(ptr), uint32(length))
	if !ok {
		return "", false
	}
	return string(b), true
}

func (h *Host) debug(_ context.Context, mod api.Module, msgPtr, msgLen int32, value uint32) {
	msg, ok := readMemString(mod, msgPtr, msgLen)
	if !ok {
		log.Warn("contract debug call: no memory export or out-of-bounds read")
		return
	}
	log.WithField("value", value).Infof("contract debug: %s", msg)
}

func (h *Host) getBalance(_ context.Context, mod api.Module, handleLo, handleHi, userPtr, userLen int32) float64 {
	cc, ok := h.handles.resolve(joinHandle(handleLo, handleHi))
	if !ok {
		return 0
	}
	user, ok := readMemString(mod, userPtr, userLen)
	if !ok {
		return 0
	}
	w, err := cc.wallets.Get(user)
	if err != nil {
		return 0
	}
	return w.Balance
}

func (h *Host) transfer(_ context.Context, mod api.Module, handleLo, handleHi, fromPtr, fromLen, toPtr, toLen int32, amount float64) int32 {
	cc, ok := h.handles.resolve(joinHandle(handleLo, handleHi))
	if !ok {
		return 1
	}
	from, ok1 := readMemString(mod, fromPtr, fromLen)
	to, ok2 := readMemString(mod, toPtr, toLen)
	if !ok1 || !ok2 || amount <= 0 {
		return 1
	}
	// Host-side transfer bypasses the fee charged on a top-level Transfer
	// transaction: contract-internal transfers have no fee of their own.
	if err := cc.wallets.Transfer(from, to, amount, 0); err != nil {
		return 1
	}
	return 0
}

func (h *Host) store(_ context.Context, mod api.Module, handleLo, handleHi, keyPtr, keyLen, valuePtr, valueLen int32) int32 {
	cc, ok := h.handles.resolve(joinHandle(handleLo, handleHi))
	if !ok {
		return 1
	}
	key, ok := readMemString(mod, keyPtr, keyLen)
	if !ok {
		return 1
	}
	value, ok := mod.Memory().Read(uint32(valuePtr), uint32(valueLen))
	if !ok {
		return 1
	}
	cc.storage.Store(cc.contractAddress, key, value)
	return 0
}

func (h *Host) load(_ context.Context, mod api.Module, handleLo, handleHi, keyPtr, keyLen, valuePtr int32) int32 {
	cc, ok := h.handles.resolve(joinHandle(handleLo, handleHi))
	if !ok {
		return -1
	}
	key, ok := readMemString(mod, keyPtr, keyLen)
	if !ok {
		return -1
	}
	value, ok := cc.storage.Load(cc.contractAddress, key)
	if !ok {
		return -1
	}
	if !mod.Memory().Write(uint32(valuePtr), value) {
		return -1
	}
	return int32(len(value))
}

func (h *Host) stake(_ context.Context, _ api.Module, handleLo, handleHi int32, amount float64) int32 {
	cc, ok := h.handles.resolve(joinHandle(handleLo, handleHi))
	if !ok {
		return 1
	}
	// Host-side stake, like transfer, charges no fee: only the top-level
	// Stake transaction type does.
	if err := cc.wallets.Stake(cc.sender, amount, 0); err != nil {
		return 1
	}
	return 0
}

func (h *Host) unstake(_ context.Context, _ api.Module, handleLo, handleHi int32, amount float64) int32 {
	cc, ok := h.handles.resolve(joinHandle(handleLo, handleHi))
	if !ok {
		return 1
	}
	if err := cc.wallets.Unstake(cc.sender, cc.blockHeight, cc.epochHeight, amount, 0); err != nil {
		return 1
	}
	return 0
}
