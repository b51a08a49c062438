package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// executeRead runs a single read action: it requires code to already
// exist at the call target (there is nothing to call otherwise), ABI-
// encodes and submits an eth_call, and decodes the return data against
// the abi_item's declared outputs. It returns the output parameter list
// alongside the decoded values so the caller can index them.
func executeRead(ctx context.Context, provider Provider, resolver *Resolver, actionID string, action *ReadAction) ([]Param, []TypedValue, error) {
	item, err := ParseAbiItem(action.AbiItem)
	if err != nil {
		return nil, nil, err
	}
	if item.Kind != AbiFunction {
		return nil, nil, ErrAbiParsing("read action %s abi_item must be a function signature", actionID)
	}
	if len(action.Args) != len(item.Inputs) {
		return nil, nil, ErrAbiParsing("read action %s expects %d args, got %d", actionID, len(item.Inputs), len(action.Args))
	}

	addressVal, err := resolver.Resolve(action.Address, SolType{Kind: KindAddress})
	if err != nil {
		return nil, nil, err
	}
	address := addressVal.Value.(common.Address)

	code, err := provider.CodeAt(ctx, address)
	if err != nil {
		return nil, nil, wrap(KindExecution, err, "checking code at "+address.Hex())
	}
	if len(code) == 0 {
		return nil, nil, ErrExecution("read action %s: no code at %s", actionID, address.Hex())
	}

	args := make([]TypedValue, len(item.Inputs))
	for i, p := range item.Inputs {
		v, err := resolver.Resolve(action.Args[i], p.Type)
		if err != nil {
			return nil, nil, err
		}
		args[i] = v
	}
	calldata, err := item.EncodeArgs(args)
	if err != nil {
		return nil, nil, err
	}

	result, err := provider.Call(ctx, CallMsg{To: address, Data: calldata})
	if err != nil {
		return nil, nil, wrap(KindExecution, err, "calling "+actionID)
	}

	values, err := item.DecodeOutputs(result)
	if err != nil {
		return nil, nil, err
	}
	return item.Outputs, values, nil
}
