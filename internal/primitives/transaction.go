// Package primitives defines the immutable wire types of the ledger kernel:
// transactions and blocks, plus their canonical serialization for hashing.
package primitives

// Kind tags the body carried by a Transaction. Transactions are a tagged
// union in spirit (the source models this as a Rust enum); Go represents it
// as a Kind discriminator plus one populated body pointer, which also gives
// a stable, field-ordered JSON encoding for canonical hashing.
type Kind string

const (
	KindTransfer       Kind = "transfer"
	KindStake          Kind = "stake"
	KindUnstake        Kind = "unstake"
	KindDeployContract Kind = "deploy_contract"
	KindCallContract   Kind = "call_contract"
)

// TransferBody moves amount from the transaction sender to receiver.
type TransferBody struct {
	Receiver string  `json:"receiver"`
	Amount   float64 `json:"amount"`
}

// StakeBody moves amount from the sender's balance into its staked total.
type StakeBody struct {
	Amount float64 `json:"amount"`
}

// UnstakeBody schedules amount to move from the sender's staked total back
// to its balance two epochs after the enclosing block's epoch.
type UnstakeBody struct {
	Amount float64 `json:"amount"`
}

// DeployContractBody registers code under a freshly allocated contract
// address.
type DeployContractBody struct {
	Code []byte `json:"code"`
}

// CallContractBody invokes the bytecode already registered at
// ContractAddress, with the transaction sender as the calling user.
type CallContractBody struct {
	ContractAddress string `json:"contract_address"`
}

// Transaction is an immutable record: a sender, a fee, and exactly one of
// the five bodies below selected by Kind. Field order here is the canonical
// JSON field order used when hashing a block.
type Transaction struct {
	Sender string  `json:"sender"`
	Fee    float64 `json:"fee"`
	Kind   Kind    `json:"kind"`

	Transfer       *TransferBody       `json:"transfer,omitempty"`
	Stake          *StakeBody          `json:"stake,omitempty"`
	Unstake        *UnstakeBody        `json:"unstake,omitempty"`
	DeployContract *DeployContractBody `json:"deploy_contract,omitempty"`
	CallContract   *CallContractBody   `json:"call_contract,omitempty"`
}

// NewTransfer builds a Transfer transaction.
func NewTransfer(sender, receiver string, amount, fee float64) Transaction {
	return Transaction{
		Sender: sender,
		Fee:    fee,
		Kind:   KindTransfer,
		Transfer: &TransferBody{
			Receiver: receiver,
			Amount:   amount,
		},
	}
}

// NewStake builds a Stake transaction for user.
func NewStake(user string, amount, fee float64) Transaction {
	return Transaction{
		Sender: user,
		Fee:    fee,
		Kind:   KindStake,
		Stake:  &StakeBody{Amount: amount},
	}
}

// NewUnstake builds an Unstake transaction for user.
func NewUnstake(user string, amount, fee float64) Transaction {
	return Transaction{
		Sender:  user,
		Fee:     fee,
		Kind:    KindUnstake,
		Unstake: &UnstakeBody{Amount: amount},
	}
}

// NewDeployContract builds a DeployContract transaction.
func NewDeployContract(sender string, code []byte, fee float64) Transaction {
	return Transaction{
		Sender:         sender,
		Fee:            fee,
		Kind:           KindDeployContract,
		DeployContract: &DeployContractBody{Code: code},
	}
}

// NewCallContract builds a CallContract transaction.
func NewCallContract(sender, contractAddress string, fee float64) Transaction {
	return Transaction{
		Sender:       sender,
		Fee:          fee,
		Kind:         KindCallContract,
		CallContract: &CallContractBody{ContractAddress: contractAddress},
	}
}
