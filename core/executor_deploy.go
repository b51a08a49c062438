package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// deterministicDeployer is the canonical CREATE2 deployment proxy address
// shared across every EVM chain it has been deployed to
// (0x4e59b44847b379578588920cA78FbF26c0B4956C). Its calldata convention
// is salt (32 bytes) followed by init code; it forwards a plain CREATE2
// with that salt and init code and returns the resulting address.
var deterministicDeployer = common.HexToAddress("0x4e59b44847b379578588920cA78FbF26c0B4956C")

// computeCreate2Address reproduces the address the deterministic deployer
// will produce for a given salt and init code, per keccak256(0xff ++
// deployer ++ salt ++ keccak256(initCode))[12:].
func computeCreate2Address(salt [32]byte, initCode []byte) common.Address {
	initCodeHash := crypto.Keccak256(initCode)
	buf := make([]byte, 0, 1+20+32+32)
	buf = append(buf, 0xff)
	buf = append(buf, deterministicDeployer.Bytes()...)
	buf = append(buf, salt[:]...)
	buf = append(buf, initCodeHash...)
	hash := crypto.Keccak256(buf)
	var addr common.Address
	copy(addr[:], hash[12:])
	return addr
}

// executeDeploy runs a single deploy action: it assembles init code
// (bytecode plus, if declared, ABI-encoded constructor args), verifies
// the CREATE2 address it computes matches the action's declared address,
// short-circuits if a contract already lives at that address, and
// otherwise submits the deployment through the deterministic deployer
// proxy and waits for the receipt.
func executeDeploy(ctx context.Context, provider Provider, resolver *Resolver, actionID string, action *DeployAction) (common.Address, error) {
	bytecodeVal, err := resolver.Resolve(action.Bytecode, SolType{Kind: KindBytes})
	if err != nil {
		return common.Address{}, err
	}
	initCode := append([]byte(nil), bytecodeVal.Value.([]byte)...)

	if action.ConstructorAbiItem != "" {
		item, err := ParseAbiItem(action.ConstructorAbiItem)
		if err != nil {
			return common.Address{}, err
		}
		if item.Kind != AbiConstructor {
			return common.Address{}, ErrAbiParsing("constructor_abi_item %q is not a constructor signature", action.ConstructorAbiItem)
		}
		if len(action.ConstructorArgs) != len(item.Inputs) {
			return common.Address{}, ErrAbiParsing("constructor %s expects %d args, got %d", actionID, len(item.Inputs), len(action.ConstructorArgs))
		}
		args := make([]TypedValue, len(item.Inputs))
		for i, p := range item.Inputs {
			v, err := resolver.Resolve(action.ConstructorArgs[i], p.Type)
			if err != nil {
				return common.Address{}, err
			}
			args[i] = v
		}
		encoded, err := item.EncodeArgs(args)
		if err != nil {
			return common.Address{}, err
		}
		initCode = append(initCode, encoded...)
	}

	saltVal, err := resolver.Resolve(action.Salt, SolType{Kind: KindFixedBytes, FixedSize: 32})
	if err != nil {
		return common.Address{}, err
	}
	var salt [32]byte
	copy(salt[:], saltVal.Value.([]byte))

	expectedVal, err := resolver.Resolve(action.Address, SolType{Kind: KindAddress})
	if err != nil {
		return common.Address{}, err
	}
	expected := expectedVal.Value.(common.Address)

	computed := computeCreate2Address(salt, initCode)
	if computed != expected {
		return common.Address{}, ErrDeploymentFailed("action %s: computed CREATE2 address %s does not match declared address %s", actionID, computed.Hex(), expected.Hex())
	}

	existingCode, err := provider.CodeAt(ctx, computed)
	if err != nil {
		return common.Address{}, wrap(KindExecution, err, "checking existing code at "+computed.Hex())
	}
	if len(existingCode) > 0 {
		return computed, nil
	}

	calldata := make([]byte, 0, 32+len(initCode))
	calldata = append(calldata, salt[:]...)
	calldata = append(calldata, initCode...)

	pending, err := provider.SendTransaction(ctx, TxRequest{To: &deterministicDeployer, Data: calldata})
	if err != nil {
		return common.Address{}, wrap(KindDeploymentFailed, err, "submitting deployment for "+actionID)
	}
	receipt, err := pending.Receipt(ctx)
	if err != nil {
		return common.Address{}, wrap(KindDeploymentFailed, err, "awaiting deployment receipt for "+actionID)
	}
	if receipt.Status != 1 {
		return common.Address{}, ErrDeploymentFailed("action %s: deployment transaction %s reverted", actionID, receipt.TxHash.Hex())
	}
	return computed, nil
}
