// Package rpcprovider implements core.Provider against a live
// Ethereum-compatible JSON-RPC endpoint via go-ethereum's ethclient and a
// local private-key signer. It is kept strictly outside core: the engine
// only ever depends on the core.Provider interface, never on this
// package's types, so core stays free of RPC transport and signer
// concerns.
package rpcprovider

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"synnergy-network/evmdeploy/core"
)

// Client adapts a go-ethereum ethclient.Client plus a private key into
// core.Provider, handling nonce lookup, gas estimation, chain-ID-aware
// signing, and transaction submission.
type Client struct {
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	log     *logrus.Logger
}

// Dial connects to rpcURL and derives the sender address from
// privateKeyHex (a hex string, optionally 0x-prefixed).
func Dial(ctx context.Context, rpcURL, privateKeyHex string, chainID int64, log *logrus.Logger) (*Client, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, core.ErrExecution("dialing %s: %v", rpcURL, err)
	}
	key, err := crypto.HexToECDSA(trim0x(privateKeyHex))
	if err != nil {
		return nil, core.ErrConfig("invalid private key: %v", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	return &Client{
		eth:     eth,
		key:     key,
		from:    from,
		chainID: big.NewInt(chainID),
		log:     log,
	}, nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// Call implements core.Provider.
func (c *Client) Call(ctx context.Context, msg core.CallMsg) ([]byte, error) {
	from := msg.From
	if from == (common.Address{}) {
		from = c.from
	}
	return c.eth.CallContract(ctx, ethereum.CallMsg{
		From: from,
		To:   &msg.To,
		Data: msg.Data,
	}, nil)
}

// CodeAt implements core.Provider.
func (c *Client) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	return c.eth.CodeAt(ctx, address, nil)
}

// SendTransaction implements core.Provider: it fills in nonce, gas price,
// and gas limit, signs with the London (EIP-1559) signer for the
// configured chain ID, and submits.
func (c *Client) SendTransaction(ctx context.Context, req core.TxRequest) (core.PendingTx, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, core.ErrExecution("fetching nonce: %v", err)
	}
	tipCap, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, core.ErrExecution("estimating gas tip: %v", err)
	}
	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, core.ErrExecution("fetching head header: %v", err)
	}
	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}

	callMsg := ethereum.CallMsg{From: c.from, To: req.To, Data: req.Data, Value: value}
	gasLimit, err := c.eth.EstimateGas(ctx, callMsg)
	if err != nil {
		return nil, core.ErrExecution("estimating gas: %v", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        req.To,
		Value:     value,
		Data:      req.Data,
	})

	signer := types.LatestSignerForChainID(c.chainID)
	signedTx, err := types.SignTx(tx, signer, c.key)
	if err != nil {
		return nil, core.ErrExecution("signing transaction: %v", err)
	}
	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return nil, core.ErrExecution("broadcasting transaction: %v", err)
	}
	c.log.WithField("hash", signedTx.Hash().Hex()).Info("transaction submitted")
	return &pendingTx{eth: c.eth, hash: signedTx.Hash()}, nil
}

// pendingTx implements core.PendingTx.
type pendingTx struct {
	eth  *ethclient.Client
	hash common.Hash
}

func (p *pendingTx) Hash() common.Hash { return p.hash }

func (p *pendingTx) Receipt(ctx context.Context) (*core.Receipt, error) {
	receipt, err := bindWaitMined(ctx, p.eth, p.hash)
	if err != nil {
		return nil, err
	}
	return &core.Receipt{
		Status:          receipt.Status,
		ContractAddress: receipt.ContractAddress,
		TxHash:          receipt.TxHash,
	}, nil
}

// bindWaitMined polls for a transaction receipt, the same loop
// go-ethereum's accounts/abi/bind.WaitMined performs, reimplemented here
// so this package depends only on ethclient, not on the bind package's
// broader transactor surface.
func bindWaitMined(ctx context.Context, eth *ethclient.Client, hash common.Hash) (*types.Receipt, error) {
	for {
		receipt, err := eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
