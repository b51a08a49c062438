package core

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// AbiItemKind distinguishes a function call target from a constructor.
type AbiItemKind string

const (
	AbiFunction    AbiItemKind = "function"
	AbiConstructor AbiItemKind = "constructor"
)

// AbiItem is a parsed human-readable ABI signature, e.g.
// "function transfer(address to, uint256 amount)" or
// "constructor(address owner, uint256 supply)". go-ethereum ships no
// parser for this human-readable form (it only round-trips full JSON
// ABIs), so this one is hand-rolled against that signature grammar.
type AbiItem struct {
	Kind    AbiItemKind
	Name    string
	Inputs  []Param
	Outputs []Param
}

// ParseAbiItem parses a single function or constructor signature string.
func ParseAbiItem(sig string) (*AbiItem, error) {
	s := strings.TrimSpace(sig)
	var kind AbiItemKind
	switch {
	case strings.HasPrefix(s, "function"):
		kind = AbiFunction
		s = strings.TrimSpace(strings.TrimPrefix(s, "function"))
	case strings.HasPrefix(s, "constructor"):
		kind = AbiConstructor
		s = strings.TrimSpace(strings.TrimPrefix(s, "constructor"))
	default:
		return nil, ErrAbiParsing("signature must start with \"function\" or \"constructor\": %q", sig)
	}

	var name string
	if kind == AbiFunction {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			return nil, ErrAbiParsing("missing \"(\" in signature %q", sig)
		}
		name = strings.TrimSpace(s[:open])
		if name == "" {
			return nil, ErrAbiParsing("function signature missing a name: %q", sig)
		}
		s = s[open:]
	}

	inputsStr, rest, err := takeParenGroup(s)
	if err != nil {
		return nil, ErrAbiParsing("%s in signature %q", err.Error(), sig)
	}
	inputs, err := parseParamList(inputsStr)
	if err != nil {
		return nil, err
	}

	var outputs []Param
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "returns") {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, "returns"))
		outputsStr, _, err := takeParenGroup(rest)
		if err != nil {
			return nil, ErrAbiParsing("%s in signature %q", err.Error(), sig)
		}
		outputs, err = parseParamList(outputsStr)
		if err != nil {
			return nil, err
		}
	}

	return &AbiItem{Kind: kind, Name: name, Inputs: inputs, Outputs: outputs}, nil
}

// takeParenGroup consumes a leading "(...)" group from s, respecting
// nested parens/brackets, and returns its interior plus whatever
// followed it.
func takeParenGroup(s string) (inner, rest string, err error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") {
		return "", "", ErrConfig("expected \"(\"")
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], nil
			}
		}
	}
	return "", "", ErrConfig("unbalanced parentheses")
}

func parseParamList(s string) ([]Param, error) {
	parts, err := splitTopLevel(s)
	if err != nil {
		return nil, err
	}
	params := make([]Param, len(parts))
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		name, typStr := splitNameAndType(p)
		typ, err := ParseSolType(typStr)
		if err != nil {
			return nil, err
		}
		params[i] = Param{Name: name, Type: typ}
	}
	return params, nil
}

// canonicalSignature renders "name(type1,type2)" with no parameter names,
// the form selector hashing requires.
func (item *AbiItem) canonicalSignature() string {
	parts := make([]string, len(item.Inputs))
	for i, p := range item.Inputs {
		parts[i] = p.Type.String()
	}
	return item.Name + "(" + strings.Join(parts, ",") + ")"
}

// Selector returns the 4-byte function selector. Only meaningful for
// AbiFunction items.
func (item *AbiItem) Selector() [4]byte {
	hash := crypto.Keccak256([]byte(item.canonicalSignature()))
	var sel [4]byte
	copy(sel[:], hash[:4])
	return sel
}

// EncodeArgs ABI-encodes args against item's input parameter list. For a
// function item the 4-byte selector is prepended; for a constructor the
// encoded args are returned bare, ready to be appended to init bytecode.
func (item *AbiItem) EncodeArgs(args []TypedValue) ([]byte, error) {
	if len(args) != len(item.Inputs) {
		return nil, ErrAbiParsing("expected %d arguments, got %d", len(item.Inputs), len(args))
	}
	arguments, err := paramsToArguments(item.Inputs)
	if err != nil {
		return nil, err
	}
	natives := make([]any, len(args))
	for i, a := range args {
		nv, err := toNative(a)
		if err != nil {
			return nil, err
		}
		natives[i] = nv
	}
	packed, err := arguments.Pack(natives...)
	if err != nil {
		return nil, wrap(KindAbiParsing, err, "packing arguments")
	}
	if item.Kind == AbiConstructor {
		return packed, nil
	}
	sel := item.Selector()
	return append(sel[:], packed...), nil
}

// DecodeOutputs ABI-decodes raw return data against item's output
// parameter list.
func (item *AbiItem) DecodeOutputs(data []byte) ([]TypedValue, error) {
	arguments, err := paramsToArguments(item.Outputs)
	if err != nil {
		return nil, err
	}
	values, err := arguments.Unpack(data)
	if err != nil {
		return nil, wrap(KindAbiParsing, err, "unpacking return data")
	}
	out := make([]TypedValue, len(item.Outputs))
	for i, p := range item.Outputs {
		tv, err := fromNative(p.Type, values[i])
		if err != nil {
			return nil, err
		}
		out[i] = tv
	}
	return out, nil
}

func paramsToArguments(params []Param) (abi.Arguments, error) {
	args := make(abi.Arguments, len(params))
	for i, p := range params {
		t, err := p.Type.toAbiType()
		if err != nil {
			return nil, wrap(KindAbiParsing, err, "resolving parameter type "+p.Type.String())
		}
		args[i] = abi.Argument{Name: p.Name, Type: t}
	}
	return args, nil
}
