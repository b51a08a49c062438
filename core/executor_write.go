package core

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// evaluateCondition resolves a WriteCondition's two operands and compares
// them with its operator. Equality/inequality work for any scalar type
// whose canonical string representation is comparable; ordering
// (lt/lte/gt/gte) requires both operands to resolve as signed or
// unsigned integers.
func evaluateCondition(resolver *Resolver, cond *WriteCondition) (bool, error) {
	valueType := SolType{Kind: KindUint, Bits: 256}
	if cond.ValueType != "" {
		parsed, err := ParseSolType(cond.ValueType)
		if err != nil {
			return false, err
		}
		valueType = parsed
	}

	left, err := resolver.Resolve(cond.Left, valueType)
	if err != nil {
		return false, err
	}
	right, err := resolver.Resolve(cond.Right, valueType)
	if err != nil {
		return false, err
	}

	if cond.Op == CmpEq || cond.Op == CmpNe {
		eq := CanonicalString(left) == CanonicalString(right)
		if cond.Op == CmpEq {
			return eq, nil
		}
		return !eq, nil
	}

	leftInt, ok1 := left.Value.(*big.Int)
	rightInt, ok2 := right.Value.(*big.Int)
	if !ok1 || !ok2 {
		return false, ErrConfig("condition operator %q requires numeric operands", cond.Op)
	}
	cmp := leftInt.Cmp(rightInt)
	switch cond.Op {
	case CmpLt:
		return cmp < 0, nil
	case CmpLte:
		return cmp <= 0, nil
	case CmpGt:
		return cmp > 0, nil
	case CmpGte:
		return cmp >= 0, nil
	default:
		return false, ErrConfig("unknown comparison operator %q", cond.Op)
	}
}

// executeWrite runs a single write action: it optionally evaluates a
// gating WriteCondition (skipping the call entirely, successfully, when
// false), then ABI-encodes the call and submits it, failing on a
// reverted receipt.
func executeWrite(ctx context.Context, provider Provider, resolver *Resolver, actionID string, action *WriteAction) error {
	if action.Condition != nil {
		ok, err := evaluateCondition(resolver, action.Condition)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	item, err := ParseAbiItem(action.AbiItem)
	if err != nil {
		return err
	}
	if item.Kind != AbiFunction {
		return ErrAbiParsing("write action %s abi_item must be a function signature", actionID)
	}
	if len(action.Args) != len(item.Inputs) {
		return ErrAbiParsing("write action %s expects %d args, got %d", actionID, len(item.Inputs), len(action.Args))
	}

	addressVal, err := resolver.Resolve(action.Address, SolType{Kind: KindAddress})
	if err != nil {
		return err
	}
	address := addressVal.Value.(common.Address)

	args := make([]TypedValue, len(item.Inputs))
	for i, p := range item.Inputs {
		v, err := resolver.Resolve(action.Args[i], p.Type)
		if err != nil {
			return err
		}
		args[i] = v
	}
	calldata, err := item.EncodeArgs(args)
	if err != nil {
		return err
	}

	txValue := big.NewInt(0)
	if action.Value.Value != "" {
		v, err := resolver.Resolve(action.Value, SolType{Kind: KindUint, Bits: 256})
		if err != nil {
			return err
		}
		txValue = v.Value.(*big.Int)
	}

	pending, err := provider.SendTransaction(ctx, TxRequest{
		To:    &address,
		Data:  calldata,
		Value: txValue,
	})
	if err != nil {
		return wrap(KindTransactionFailed, err, "submitting write for "+actionID)
	}
	receipt, err := pending.Receipt(ctx)
	if err != nil {
		return wrap(KindTransactionFailed, err, "awaiting receipt for "+actionID)
	}
	if receipt.Status != 1 {
		return ErrTransactionFailed("action %s: write transaction %s reverted", actionID, receipt.TxHash.Hex())
	}
	return nil
}
