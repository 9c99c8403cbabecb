package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleTableRegisterResolveRelease(t *testing.T) {
	table := newHandleTable()
	cc := &callContext{contractAddress: "contract_0", sender: "Alice"}

	handle := table.register(cc)
	resolved, ok := table.resolve(handle)
	assert.True(t, ok)
	assert.Same(t, cc, resolved)

	table.release(handle)
	_, ok = table.resolve(handle)
	assert.False(t, ok)
}

func TestHandleSplitJoinRoundTrips(t *testing.T) {
	for _, handle := range []uint64{0, 1, 1 << 31, 1 << 40, ^uint64(0)} {
		lo, hi := splitHandle(handle)
		assert.Equal(t, handle, joinHandle(lo, hi))
	}
}

func TestUnknownHandleResolvesFalse(t *testing.T) {
	table := newHandleTable()
	_, ok := table.resolve(999)
	assert.False(t, ok)
}
