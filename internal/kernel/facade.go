package kernel

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"empower1.com/empower1ledger/internal/primitives"
)

// MessageType discriminates an Envelope's payload, mirroring the source's
// wire message enum (Transaction/Block/GetHeaders/Headers) extended with the
// read-only wallet lookup the facade also exposes.
type MessageType string

const (
	MsgProduceBlock  MessageType = "produce_block"
	MsgIncomingBlock MessageType = "incoming_block"
	MsgGetHeaders    MessageType = "get_headers"
	MsgHeaders       MessageType = "headers"
	MsgGetWallet     MessageType = "get_wallet"
	MsgWallet        MessageType = "wallet"
)

// Envelope is the unit of exchange across the facade: every response
// Dispatch returns carries a fresh uuid for correlation in logs, the way the
// network-layer message types in the source are framed for transport. A
// request's ID is whatever the caller sets; Dispatch does not read it.
type Envelope struct {
	ID   string
	Type MessageType

	Timestamp    int64
	Transactions []primitives.Transaction
	Block        *primitives.Block
	FromHeight   int64
	Headers      []primitives.Block
	User         string
	Wallet       *walletView
}

type walletView struct {
	Balance float64
	Staked  float64
}

// Facade is the single entry point external callers (CLI, RPC, a future
// network layer) drive the kernel through; it never exposes the kernel's
// mutex or internal types directly.
type Facade struct {
	kernel *Kernel
}

// NewFacade wraps an already-constructed Kernel.
func NewFacade(k *Kernel) *Facade {
	return &Facade{kernel: k}
}

// Dispatch routes an Envelope to the matching kernel operation and returns
// the response Envelope, tagged with a new ID of its own.
func (f *Facade) Dispatch(ctx context.Context, req Envelope) (Envelope, error) {
	switch req.Type {
	case MsgProduceBlock:
		block, err := f.kernel.ProduceBlock(ctx, req.Transactions, req.Timestamp)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{ID: uuid.NewString(), Type: MsgIncomingBlock, Block: block}, nil

	case MsgIncomingBlock:
		if req.Block == nil {
			return Envelope{}, fmt.Errorf("incoming_block message carries no block")
		}
		if err := f.kernel.ProcessBlock(ctx, *req.Block); err != nil {
			return Envelope{}, err
		}
		return Envelope{ID: uuid.NewString(), Type: MsgIncomingBlock, Block: req.Block}, nil

	case MsgGetHeaders:
		headers, err := f.kernel.Headers(req.FromHeight)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{ID: uuid.NewString(), Type: MsgHeaders, Headers: headers}, nil

	case MsgGetWallet:
		w, err := f.kernel.Wallet(req.User)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{
			ID:   uuid.NewString(),
			Type: MsgWallet,
			User: req.User,
			Wallet: &walletView{
				Balance: w.Balance,
				Staked:  w.Staked,
			},
		}, nil

	default:
		return Envelope{}, fmt.Errorf("unknown message type %q", req.Type)
	}
}
