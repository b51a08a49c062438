package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// SolKind is the closed set of ABI primitive and compound kinds a SolType
// may describe.
type SolKind string

const (
	KindAddress    SolKind = "address"
	KindBool       SolKind = "bool"
	KindUint       SolKind = "uint"
	KindInt        SolKind = "int"
	KindFixedBytes SolKind = "fixedBytes"
	KindBytes      SolKind = "bytes"
	KindString     SolKind = "string"
	KindArray      SolKind = "array"
	KindFixedArray SolKind = "fixedArray"
	KindTuple      SolKind = "tuple"
	KindFunction   SolKind = "function"
)

// SolType is the Solidity type tree behind a TypedValue. It always carries
// enough information to round-trip to a canonical type string and to a
// go-ethereum accounts/abi.Type for encoding.
type SolType struct {
	Kind       SolKind
	Bits       int     // uintN/intN bit width
	FixedSize  int     // bytesN size, or fixed array length
	Elem       *SolType // Array/FixedArray element type
	Components []Param  // Tuple members, in order
}

// Param is a named ABI parameter: a function/constructor input or output,
// or a tuple member. It mirrors go-ethereum's abi.Argument.
type Param struct {
	Name string
	Type SolType
}

// String renders the canonical Solidity type string for t (no field names,
// matching the ABI "canonical type" used in selector computation).
func (t SolType) String() string {
	switch t.Kind {
	case KindAddress:
		return "address"
	case KindBool:
		return "bool"
	case KindUint:
		return fmt.Sprintf("uint%d", t.Bits)
	case KindInt:
		return fmt.Sprintf("int%d", t.Bits)
	case KindFixedBytes:
		return fmt.Sprintf("bytes%d", t.FixedSize)
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindArray:
		return t.Elem.String() + "[]"
	case KindFixedArray:
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.FixedSize)
	case KindTuple:
		parts := make([]string, len(t.Components))
		for i, c := range t.Components {
			parts[i] = c.Type.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return "unknown"
	}
}

// ParseSolType parses a textual Solidity type (as it appears in an ABI item
// signature or a Variable's declared `ty`) into a SolType tree. It accepts
// primitives, bracketed arrays ("T[]", "T[N]"), and parenthesized tuples
// ("(T1,T2)") with arbitrary nesting.
func ParseSolType(s string) (SolType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SolType{}, ErrAbiParsing("empty type")
	}

	// Peel off trailing array suffixes one at a time, innermost first is
	// applied last, so we recurse on the base with suffixes stripped.
	if idx := lastTopLevelBracket(s); idx >= 0 {
		base := s[:idx]
		suffix := s[idx:]
		elem, err := ParseSolType(base)
		if err != nil {
			return SolType{}, err
		}
		inner := suffix[1 : len(suffix)-1]
		if inner == "" {
			return SolType{Kind: KindArray, Elem: &elem}, nil
		}
		n, err := strconv.Atoi(inner)
		if err != nil {
			return SolType{}, ErrAbiParsing("invalid fixed array length %q", inner)
		}
		return SolType{Kind: KindFixedArray, Elem: &elem, FixedSize: n}, nil
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		members, err := splitTopLevel(s[1 : len(s)-1])
		if err != nil {
			return SolType{}, err
		}
		comps := make([]Param, len(members))
		for i, m := range members {
			name, typStr := splitNameAndType(m)
			typ, err := ParseSolType(typStr)
			if err != nil {
				return SolType{}, err
			}
			comps[i] = Param{Name: name, Type: typ}
		}
		return SolType{Kind: KindTuple, Components: comps}, nil
	}
	if strings.HasPrefix(s, "tuple") {
		return ParseSolType(strings.TrimPrefix(s, "tuple"))
	}

	switch {
	case s == "address":
		return SolType{Kind: KindAddress}, nil
	case s == "bool":
		return SolType{Kind: KindBool}, nil
	case s == "bytes":
		return SolType{Kind: KindBytes}, nil
	case s == "string":
		return SolType{Kind: KindString}, nil
	case s == "function":
		return SolType{Kind: KindFunction}, nil
	case s == "uint":
		return SolType{Kind: KindUint, Bits: 256}, nil
	case s == "int":
		return SolType{Kind: KindInt, Bits: 256}, nil
	case strings.HasPrefix(s, "uint"):
		bits, err := strconv.Atoi(s[4:])
		if err != nil || bits < 8 || bits > 256 || bits%8 != 0 {
			return SolType{}, ErrAbiParsing("invalid uint width in %q", s)
		}
		return SolType{Kind: KindUint, Bits: bits}, nil
	case strings.HasPrefix(s, "int"):
		bits, err := strconv.Atoi(s[3:])
		if err != nil || bits < 8 || bits > 256 || bits%8 != 0 {
			return SolType{}, ErrAbiParsing("invalid int width in %q", s)
		}
		return SolType{Kind: KindInt, Bits: bits}, nil
	case strings.HasPrefix(s, "bytes"):
		n, err := strconv.Atoi(s[5:])
		if err != nil || n < 1 || n > 32 {
			return SolType{}, ErrAbiParsing("invalid fixed bytes size in %q", s)
		}
		return SolType{Kind: KindFixedBytes, FixedSize: n}, nil
	}
	return SolType{}, ErrAbiParsing("unrecognized solidity type %q", s)
}

// lastTopLevelBracket returns the index of the '[' that opens the
// outermost trailing array suffix of s, or -1 if s does not end in one.
func lastTopLevelBracket(s string) int {
	if !strings.HasSuffix(s, "]") {
		return -1
	}
	depthParen, depthBrack := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depthParen++
		case '(':
			depthParen--
		case ']':
			depthBrack++
		case '[':
			depthBrack--
			if depthBrack == 0 && depthParen == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits a comma-separated list respecting nested
// parentheses and brackets.
func splitTopLevel(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth < 0 {
				return nil, ErrAbiParsing("unbalanced brackets in %q", s)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, ErrAbiParsing("unbalanced brackets in %q", s)
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts, nil
}

// splitNameAndType splits a parameter declaration like "address owner" or
// "uint256[] balances" into (name, type). A declaration with no name
// ("uint256") yields an empty name.
func splitNameAndType(s string) (name, typ string) {
	s = strings.TrimSpace(s)
	idx := lastTopLevelSpace(s)
	if idx < 0 {
		return "", s
	}
	return strings.TrimSpace(s[idx+1:]), strings.TrimSpace(s[:idx])
}

func lastTopLevelSpace(s string) int {
	depth := 0
	last := -1
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ' ':
			if depth == 0 {
				last = i
			}
		}
	}
	return last
}

// TypedValue is a tagged ABI value: it always carries the SolType it was
// coerced to, plus a Go-native payload shaped the way
// github.com/ethereum/go-ethereum/accounts/abi expects it for packing.
type TypedValue struct {
	Type  SolType
	Value any
}

// Coerce parses text into a TypedValue of the expected Solidity type,
// accepting canonical decimal integers (uint/int), 0x-prefixed hex
// (bytes, fixed bytes, address), true|false (bool), and bracketed
// JSON-like array literals for sequences.
func Coerce(expected SolType, text string) (TypedValue, error) {
	text = strings.TrimSpace(text)
	switch expected.Kind {
	case KindAddress:
		if !common.IsHexAddress(text) {
			return TypedValue{}, ErrTypeConversion("address", text)
		}
		return TypedValue{Type: expected, Value: common.HexToAddress(text)}, nil
	case KindBool:
		switch text {
		case "true":
			return TypedValue{Type: expected, Value: true}, nil
		case "false":
			return TypedValue{Type: expected, Value: false}, nil
		}
		return TypedValue{}, ErrTypeConversion("bool", text)
	case KindUint, KindInt:
		n, ok := new(big.Int).SetString(text, 0)
		if !ok {
			return TypedValue{}, ErrTypeConversion(expected.String(), text)
		}
		if !fitsBits(n, expected.Bits, expected.Kind == KindInt) {
			return TypedValue{}, ErrTypeConversion(expected.String(), text)
		}
		return TypedValue{Type: expected, Value: n}, nil
	case KindFixedBytes:
		b, err := decodeHex(text)
		if err != nil || len(b) != expected.FixedSize {
			return TypedValue{}, ErrTypeConversion(expected.String(), text)
		}
		return TypedValue{Type: expected, Value: b}, nil
	case KindBytes:
		b, err := decodeHex(text)
		if err != nil {
			return TypedValue{}, ErrTypeConversion("bytes", text)
		}
		return TypedValue{Type: expected, Value: b}, nil
	case KindFunction:
		b, err := decodeHex(text)
		if err != nil || len(b) != 24 {
			return TypedValue{}, ErrTypeConversion("function", text)
		}
		return TypedValue{Type: expected, Value: b}, nil
	case KindString:
		return TypedValue{Type: expected, Value: text}, nil
	case KindArray, KindFixedArray:
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return TypedValue{}, ErrTypeConversion(expected.String(), text)
		}
		if expected.Kind == KindFixedArray && len(raw) != expected.FixedSize {
			return TypedValue{}, ErrTypeConversion(expected.String(), text)
		}
		elems := make([]TypedValue, len(raw))
		for i, r := range raw {
			elText, err := jsonScalarText(r)
			if err != nil {
				return TypedValue{}, err
			}
			ev, err := Coerce(*expected.Elem, elText)
			if err != nil {
				return TypedValue{}, err
			}
			elems[i] = ev
		}
		return TypedValue{Type: expected, Value: elems}, nil
	case KindTuple:
		return TypedValue{}, ErrTypeConversion("tuple", text)
	}
	return TypedValue{}, ErrTypeConversion(expected.String(), text)
}

// jsonScalarText renders a JSON scalar (string, number, bool) back into the
// plain text Coerce expects, so array literals can reuse the same
// primitive coercion path element-by-element.
func jsonScalarText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", ErrTypeConversion("array element", string(raw))
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

func fitsBits(n *big.Int, bits int, signed bool) bool {
	if signed {
		max := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		min := new(big.Int).Neg(max)
		return n.Cmp(min) >= 0 && n.Cmp(new(big.Int).Sub(max, big.NewInt(1))) <= 0
	}
	if n.Sign() < 0 {
		return false
	}
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return n.Cmp(max) < 0
}

// CanonicalString renders v's value in the textual form a ${path}
// template substitution or a log line should show.
func CanonicalString(v TypedValue) string {
	switch v.Type.Kind {
	case KindAddress:
		return v.Value.(common.Address).Hex()
	case KindBool:
		return strconv.FormatBool(v.Value.(bool))
	case KindUint, KindInt:
		return v.Value.(*big.Int).String()
	case KindFixedBytes, KindBytes, KindFunction:
		return "0x" + common.Bytes2Hex(v.Value.([]byte))
	case KindString:
		return v.Value.(string)
	case KindArray, KindFixedArray:
		elems := v.Value.([]TypedValue)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = CanonicalString(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindTuple:
		elems := v.Value.([]TypedValue)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = CanonicalString(e)
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return fmt.Sprintf("%v", v.Value)
	}
}

// toAbiType converts a SolType to the equivalent go-ethereum
// accounts/abi.Type, building tuple components through ArgumentMarshaling.
func (t SolType) toAbiType() (abi.Type, error) {
	switch t.Kind {
	case KindTuple:
		marshaled := make([]abi.ArgumentMarshaling, len(t.Components))
		for i, c := range t.Components {
			marshaled[i] = componentMarshaling(c)
		}
		return abi.NewType("tuple", "", marshaled)
	case KindArray:
		elemStr := t.Elem.String()
		if t.Elem.Kind == KindTuple {
			marshaled := make([]abi.ArgumentMarshaling, len(t.Elem.Components))
			for i, c := range t.Elem.Components {
				marshaled[i] = componentMarshaling(c)
			}
			return abi.NewType("tuple[]", "", marshaled)
		}
		return abi.NewType(elemStr+"[]", "", nil)
	case KindFixedArray:
		if t.Elem.Kind == KindTuple {
			marshaled := make([]abi.ArgumentMarshaling, len(t.Elem.Components))
			for i, c := range t.Elem.Components {
				marshaled[i] = componentMarshaling(c)
			}
			return abi.NewType(fmt.Sprintf("tuple[%d]", t.FixedSize), "", marshaled)
		}
		return abi.NewType(fmt.Sprintf("%s[%d]", t.Elem.String(), t.FixedSize), "", nil)
	default:
		return abi.NewType(t.String(), "", nil)
	}
}

func componentMarshaling(p Param) abi.ArgumentMarshaling {
	m := abi.ArgumentMarshaling{Name: p.Name, Type: p.Type.String()}
	if p.Type.Kind == KindTuple {
		m.Type = "tuple"
		m.Components = make([]abi.ArgumentMarshaling, len(p.Type.Components))
		for i, c := range p.Type.Components {
			m.Components[i] = componentMarshaling(c)
		}
	} else if p.Type.Kind == KindArray && p.Type.Elem.Kind == KindTuple {
		m.Type = "tuple[]"
		m.Components = make([]abi.ArgumentMarshaling, len(p.Type.Elem.Components))
		for i, c := range p.Type.Elem.Components {
			m.Components[i] = componentMarshaling(c)
		}
	} else if p.Type.Kind == KindFixedArray && p.Type.Elem.Kind == KindTuple {
		m.Type = fmt.Sprintf("tuple[%d]", p.Type.FixedSize)
		m.Components = make([]abi.ArgumentMarshaling, len(p.Type.Elem.Components))
		for i, c := range p.Type.Elem.Components {
			m.Components[i] = componentMarshaling(c)
		}
	}
	return m
}

// toNative converts a TypedValue into the Go-native shape go-ethereum's
// abi.Arguments.Pack expects.
func toNative(v TypedValue) (any, error) {
	switch v.Type.Kind {
	case KindArray, KindFixedArray:
		elems := v.Value.([]TypedValue)
		out, err := nativeSlice(*v.Type.Elem, elems)
		if err != nil {
			return nil, err
		}
		return out, nil
	case KindTuple:
		return nativeTuple(v.Type, v.Value.([]TypedValue))
	default:
		return v.Value, nil
	}
}

// fromNative converts a value returned by abi.Arguments.Unpack back into a
// TypedValue of the given SolType.
func fromNative(t SolType, v any) (TypedValue, error) {
	switch t.Kind {
	case KindArray, KindFixedArray:
		elems, err := fromNativeSlice(*t.Elem, v)
		if err != nil {
			return TypedValue{}, err
		}
		return TypedValue{Type: t, Value: elems}, nil
	case KindTuple:
		elems, err := fromNativeTuple(t, v)
		if err != nil {
			return TypedValue{}, err
		}
		return TypedValue{Type: t, Value: elems}, nil
	default:
		return TypedValue{Type: t, Value: v}, nil
	}
}

// nativeSlice builds the reflective slice-of-native-Go-values abi.Pack
// expects for an array/fixed-array parameter.
func nativeSlice(elemType SolType, elems []TypedValue) (any, error) {
	abiElemType, err := elemType.toAbiType()
	if err != nil {
		return nil, wrap(KindAbiParsing, err, "resolving array element type")
	}
	slice := reflectMakeSlice(abiElemType.GetType(), len(elems))
	for i, e := range elems {
		nv, err := toNative(e)
		if err != nil {
			return nil, err
		}
		reflectSetIndex(slice, i, nv)
	}
	return reflectInterface(slice), nil
}

// nativeTuple builds the anonymous-struct value abi.Pack expects for a
// tuple parameter, whose Go type was generated by abi.Type.GetType().
func nativeTuple(t SolType, elems []TypedValue) (any, error) {
	abiType, err := t.toAbiType()
	if err != nil {
		return nil, wrap(KindAbiParsing, err, "resolving tuple type")
	}
	structPtr := reflectNewStruct(abiType.GetType())
	for i, c := range t.Components {
		nv, err := toNative(elems[i])
		if err != nil {
			return nil, err
		}
		if err := reflectSetField(structPtr, i, nv); err != nil {
			return nil, wrap(KindAbiParsing, err, fmt.Sprintf("setting tuple field %s", c.Name))
		}
	}
	return reflectElem(structPtr), nil
}

// fromNativeSlice converts a []interface{}/reflect slice coming out of
// abi.Unpack back into []TypedValue.
func fromNativeSlice(elemType SolType, v any) ([]TypedValue, error) {
	rv := reflectValueOf(v)
	n := reflectLen(rv)
	out := make([]TypedValue, n)
	for i := 0; i < n; i++ {
		tv, err := fromNative(elemType, reflectIndexInterface(rv, i))
		if err != nil {
			return nil, err
		}
		out[i] = tv
	}
	return out, nil
}

// fromNativeTuple converts the anonymous struct abi.Unpack produced for a
// tuple parameter back into []TypedValue, one per component in order.
func fromNativeTuple(t SolType, v any) ([]TypedValue, error) {
	rv := reflectValueOf(v)
	out := make([]TypedValue, len(t.Components))
	for i, c := range t.Components {
		tv, err := fromNative(c.Type, reflectFieldInterface(rv, i))
		if err != nil {
			return nil, err
		}
		out[i] = tv
	}
	return out, nil
}
