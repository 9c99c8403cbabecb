package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empower1.com/empower1ledger/internal/ledgererrors"
)

func TestDeployAssignsSequentialAddresses(t *testing.T) {
	r := NewRegistry()
	a0 := r.Deploy([]byte("code-a"))
	a1 := r.Deploy([]byte("code-b"))

	assert.Equal(t, "contract_0", a0)
	assert.Equal(t, "contract_1", a1)

	code, err := r.Code(a0)
	require.NoError(t, err)
	assert.Equal(t, []byte("code-a"), code)
}

func TestCodeUnknownAddress(t *testing.T) {
	r := NewRegistry()
	_, err := r.Code("contract_7")
	assert.ErrorIs(t, err, ledgererrors.ErrContractNotFound)
}

func TestStorageScopesByContractAddress(t *testing.T) {
	s := NewStorage()
	s.Store("contract_0", "k", []byte("v0"))
	s.Store("contract_1", "k", []byte("v1"))

	v, ok := s.Load("contract_0", "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v0"), v)

	v, ok = s.Load("contract_1", "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), v)
}

func TestStorageLoadAbsentKey(t *testing.T) {
	s := NewStorage()
	_, ok := s.Load("contract_0", "missing")
	assert.False(t, ok)
}
