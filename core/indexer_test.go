package core

import (
	"math/big"
	"strconv"
	"testing"
)

func uintVal(n int64) TypedValue {
	return TypedValue{Type: SolType{Kind: KindUint, Bits: 256}, Value: big.NewInt(n)}
}

func TestIndexerFlattensScalarOutput(t *testing.T) {
	idx := NewOutputIndex()
	params := []Param{{Name: "x", Type: SolType{Kind: KindUint, Bits: 256}}}
	if err := idx.RecordOutput("read_x", params, []TypedValue{uintVal(7)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := idx.GetOutput("read_x.x")
	if !ok {
		t.Fatal("expected read_x.x to be indexed")
	}
	if CanonicalString(v) != "7" {
		t.Fatalf("expected 7, got %s", CanonicalString(v))
	}
}

func TestIndexerFlattensTuple(t *testing.T) {
	idx := NewOutputIndex()
	addrType := SolType{Kind: KindAddress}
	tuple := SolType{Kind: KindTuple, Components: []Param{
		{Name: "a", Type: addrType},
		{Name: "b", Type: SolType{Kind: KindUint, Bits: 256}},
	}}
	addrVal, _ := Coerce(addrType, "0x4e59b44847b379578588920cA78FbF26c0B4956C")
	value := TypedValue{Type: tuple, Value: []TypedValue{addrVal, uintVal(9)}}

	params := []Param{{Name: "info", Type: tuple}}
	if err := idx.RecordOutput("info", params, []TypedValue{value}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := idx.GetOutput("info.info.a"); !ok {
		t.Fatal("expected info.info.a to be indexed")
	}
	v, ok := idx.GetOutput("info.info.b")
	if !ok || CanonicalString(v) != "9" {
		t.Fatalf("expected info.info.b == 9, got %v (ok=%v)", v, ok)
	}
}

func TestIndexerFlattensFixedArray(t *testing.T) {
	idx := NewOutputIndex()
	uint256 := SolType{Kind: KindUint, Bits: 256}
	arrType := SolType{Kind: KindFixedArray, Elem: &uint256, FixedSize: 3}
	value := TypedValue{Type: arrType, Value: []TypedValue{uintVal(1), uintVal(2), uintVal(3)}}

	params := []Param{{Name: "nums", Type: arrType}}
	if err := idx.RecordOutput("nums", params, []TypedValue{value}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"1", "2", "3"} {
		path := "nums.nums[" + strconv.Itoa(i) + "]"
		v, ok := idx.GetOutput(path)
		if !ok {
			t.Fatalf("expected %s to be indexed", path)
		}
		if CanonicalString(v) != want {
			t.Fatalf("expected %s at %s, got %s", want, path, CanonicalString(v))
		}
	}
}

func TestIndexerDeployRecordsBareActionID(t *testing.T) {
	idx := NewOutputIndex()
	addrType := SolType{Kind: KindAddress}
	addrVal, _ := Coerce(addrType, "0x4e59b44847b379578588920cA78FbF26c0B4956C")
	params := []Param{{Name: "", Type: addrType}}
	if err := idx.RecordOutput("deploy_token", params, []TypedValue{addrVal}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := idx.GetOutput("deploy_token"); !ok {
		t.Fatal("expected deploy output at the bare action id")
	}
}

func TestOutputIndexSubstituteExpandsTemplate(t *testing.T) {
	idx := NewOutputIndex()
	params := []Param{{Name: "", Type: SolType{Kind: KindAddress}}}
	addrVal, _ := Coerce(SolType{Kind: KindAddress}, "0x4e59b44847b379578588920cA78FbF26c0B4956C")
	if err := idx.RecordOutput("deploy_token", params, []TypedValue{addrVal}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx.SaveVariable("suffix", SolType{Kind: KindString}, TypedValue{Type: SolType{Kind: KindString}, Value: "mainnet"})

	got, err := idx.Substitute("deployed ${deploy_token} on ${suffix}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "deployed 0x4e59b44847b379578588920cA78FbF26c0B4956C on mainnet"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestOutputIndexSubstituteLeavesPlainTextUnchanged(t *testing.T) {
	idx := NewOutputIndex()
	got, err := idx.Substitute("0x1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0x1234" {
		t.Fatalf("expected unchanged text, got %q", got)
	}
}

func TestOutputIndexSubstituteErrorsOnMissingPath(t *testing.T) {
	idx := NewOutputIndex()
	if _, err := idx.Substitute("${missing}"); err == nil {
		t.Fatal("expected an error for an unresolved template path")
	}
}

func TestIndexerOutputIsAppendOnly(t *testing.T) {
	idx := NewOutputIndex()
	params := []Param{{Name: "x", Type: SolType{Kind: KindUint, Bits: 256}}}
	if err := idx.RecordOutput("a", params, []TypedValue{uintVal(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := idx.RecordOutput("a", params, []TypedValue{uintVal(2)}); err == nil {
		t.Fatal("expected an error rewriting an existing path")
	}
}
