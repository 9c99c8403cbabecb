// Package contracts holds deployed contract bytecode and per-contract
// key/value storage, and the sandboxed host that executes that bytecode
// against the kernel.
package contracts

import (
	"fmt"
	"sync"

	"empower1.com/empower1ledger/internal/ledgererrors"
)

// Registry maps a sequentially assigned contract address to its deployed
// bytecode. Addresses are never reused or reassigned.
type Registry struct {
	mu    sync.RWMutex
	code  map[string][]byte
	order []string
}

// NewRegistry returns an empty contract registry.
func NewRegistry() *Registry {
	return &Registry{code: make(map[string][]byte)}
}

// Deploy assigns the next "contract_<N>" address, where N is the number of
// contracts already deployed, registers code under it, and returns the
// address.
func (r *Registry) Deploy(code []byte) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	address := fmt.Sprintf("contract_%d", len(r.order))
	stored := make([]byte, len(code))
	copy(stored, code)
	r.code[address] = stored
	r.order = append(r.order, address)
	return address
}

// Code returns the bytecode registered at address.
func (r *Registry) Code(address string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.code[address]
	if !ok {
		return nil, fmt.Errorf("%s: %w", address, ledgererrors.ErrContractNotFound)
	}
	return code, nil
}

// Storage is the nested contract_address -> (key -> value) store. Absent
// keys read back as not-present, never as a zero-length value.
type Storage struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewStorage returns an empty contract storage table.
func NewStorage() *Storage {
	return &Storage{data: make(map[string]map[string][]byte)}
}

// Store writes value under key, scoped to contractAddress.
func (s *Storage) Store(contractAddress, key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scope, ok := s.data[contractAddress]
	if !ok {
		scope = make(map[string][]byte)
		s.data[contractAddress] = scope
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	scope[key] = stored
}

// Load returns the value stored under key for contractAddress, and whether
// it was present.
func (s *Storage) Load(contractAddress, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scope, ok := s.data[contractAddress]
	if !ok {
		return nil, false
	}
	value, ok := scope[key]
	return value, ok
}
