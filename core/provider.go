package core

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CallMsg is a read-only eth_call request.
type CallMsg struct {
	From common.Address
	To   common.Address
	Data []byte
}

// TxRequest is a state-mutating transaction request. Nonce/gas/signing
// are the Provider implementation's concern, not the engine's.
type TxRequest struct {
	From  common.Address
	To    *common.Address // nil for a contract-creation transaction
	Data  []byte
	Value *big.Int
}

// Receipt is the subset of a transaction receipt the executors inspect:
// whether it reverted, and the address a contract-creation transaction
// produced.
type Receipt struct {
	Status          uint64
	ContractAddress common.Address
	TxHash          common.Hash
}

// PendingTx is a submitted, not-yet-confirmed transaction.
type PendingTx interface {
	Hash() common.Hash
	Receipt(ctx context.Context) (*Receipt, error)
}

// Provider is the chain-access capability the engine and its executors
// depend on. It intentionally excludes wallet/signer management and RPC
// transport construction — those live in the sibling rpcprovider package
// so core never imports an RPC client library directly.
type Provider interface {
	Call(ctx context.Context, msg CallMsg) ([]byte, error)
	SendTransaction(ctx context.Context, req TxRequest) (PendingTx, error)
	CodeAt(ctx context.Context, address common.Address) ([]byte, error)
}
