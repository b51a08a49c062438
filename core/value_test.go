package core

import (
	"math/big"
	"testing"
)

func TestParseSolTypeRoundTrip(t *testing.T) {
	cases := []string{
		"address", "bool", "uint256", "int8", "bytes32", "bytes", "string",
		"uint256[]", "address[3]", "(address,uint256)", "(address owner,uint256[] balances)[2]",
	}
	for _, c := range cases {
		typ, err := ParseSolType(c)
		if err != nil {
			t.Fatalf("ParseSolType(%q): %v", c, err)
		}
		got := typ.String()
		again, err := ParseSolType(got)
		if err != nil || again.String() != got {
			t.Fatalf("ParseSolType(%q).String() = %q does not re-parse to itself (err %v)", c, got, err)
		}
	}
}

func TestCoerceUint256(t *testing.T) {
	typ := SolType{Kind: KindUint, Bits: 256}
	v, err := Coerce(typ, "12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.Value.(*big.Int)
	if !ok || n.Cmp(big.NewInt(12345)) != 0 {
		t.Fatalf("expected 12345, got %v", v.Value)
	}
}

func TestCoerceUintOverflow(t *testing.T) {
	typ := SolType{Kind: KindUint, Bits: 8}
	if _, err := Coerce(typ, "256"); err == nil {
		t.Fatal("expected overflow error for uint8(256)")
	}
}

func TestCoerceAddress(t *testing.T) {
	typ := SolType{Kind: KindAddress}
	v, err := Coerce(typ, "0x4e59b44847b379578588920cA78FbF26c0B4956C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CanonicalString(v) != "0x4e59b44847b379578588920cA78FbF26c0B4956C" {
		t.Fatalf("unexpected canonical address form: %s", CanonicalString(v))
	}
}

func TestCoerceBadAddress(t *testing.T) {
	typ := SolType{Kind: KindAddress}
	if _, err := Coerce(typ, "not-an-address"); err == nil {
		t.Fatal("expected a type conversion error")
	}
}

func TestCoerceArrayLiteral(t *testing.T) {
	typ := SolType{Kind: KindArray, Elem: &SolType{Kind: KindUint, Bits: 256}}
	v, err := Coerce(typ, "[1,2,3]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elems := v.Value.([]TypedValue)
	if len(elems) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elems))
	}
	if CanonicalString(elems[1]) != "2" {
		t.Fatalf("expected second element 2, got %s", CanonicalString(elems[1]))
	}
}

func TestCoerceFixedArrayLengthMismatch(t *testing.T) {
	uint256 := SolType{Kind: KindUint, Bits: 256}
	typ := SolType{Kind: KindFixedArray, Elem: &uint256, FixedSize: 3}
	if _, err := Coerce(typ, "[1,2]"); err == nil {
		t.Fatal("expected a length mismatch error")
	}
}

func TestCoerceBool(t *testing.T) {
	typ := SolType{Kind: KindBool}
	v, err := Coerce(typ, "true")
	if err != nil || v.Value != true {
		t.Fatalf("expected true, got %v, err %v", v.Value, err)
	}
}
