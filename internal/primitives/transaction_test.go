package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTransferPopulatesTransferBodyOnly(t *testing.T) {
	tx := NewTransfer("Genesis", "Alice", 100, 1)
	assert.Equal(t, KindTransfer, tx.Kind)
	assert.NotNil(t, tx.Transfer)
	assert.Equal(t, "Alice", tx.Transfer.Receiver)
	assert.Equal(t, 100.0, tx.Transfer.Amount)
	assert.Nil(t, tx.Stake)
	assert.Nil(t, tx.Unstake)
	assert.Nil(t, tx.DeployContract)
	assert.Nil(t, tx.CallContract)
}

func TestNewDeployContractCarriesCode(t *testing.T) {
	code := []byte{0x00, 0x61, 0x73, 0x6d}
	tx := NewDeployContract("Alice", code, 2)
	assert.Equal(t, KindDeployContract, tx.Kind)
	assert.Equal(t, code, tx.DeployContract.Code)
}

func TestNewCallContractCarriesAddress(t *testing.T) {
	tx := NewCallContract("Alice", "contract_0", 2)
	assert.Equal(t, KindCallContract, tx.Kind)
	assert.Equal(t, "contract_0", tx.CallContract.ContractAddress)
}
