package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeJSON(t *testing.T, dir, name string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestResolverDataContractBytecodeNormalization(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "Token.json", map[string]any{
		"bytecode": map[string]any{"object": "0x6001"},
		"abi":      []any{},
	})

	source := NewFileDataSource(dir)
	resolver := NewResolver(NewOutputIndex(), map[string]DataReference{
		"token": {Kind: DataKindContract, Path: "Token"},
	}, source)

	v, err := resolver.Resolve(Reference{Kind: RefData, Value: "token.bytecode"}, SolType{Kind: KindBytes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CanonicalString(v) != "0x6001" {
		t.Fatalf("expected 0x6001, got %s", CanonicalString(v))
	}
}

func TestResolverDataContractDerivesName(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "Token.json", map[string]any{"bytecode": "0x00"})

	source := NewFileDataSource(dir)
	resolver := NewResolver(NewOutputIndex(), map[string]DataReference{
		"token": {Kind: DataKindContract, Path: "Token"},
	}, source)

	v, err := resolver.Resolve(Reference{Kind: RefData, Value: "token.name"}, SolType{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CanonicalString(v) != "Token" {
		t.Fatalf("expected derived name Token, got %s", CanonicalString(v))
	}
}

func TestResolverVariableNotFound(t *testing.T) {
	resolver := NewResolver(NewOutputIndex(), nil, NewFileDataSource(t.TempDir()))
	_, err := resolver.Resolve(Reference{Kind: RefVar, Value: "ghost"}, SolType{Kind: KindUint, Bits: 256})
	if err == nil {
		t.Fatal("expected VariableNotFound")
	}
	coreErr, ok := err.(*Error)
	if !ok || coreErr.Kind != KindVariableNotFound {
		t.Fatalf("expected KindVariableNotFound, got %v", err)
	}
}

func TestResolverOutputNotFound(t *testing.T) {
	resolver := NewResolver(NewOutputIndex(), nil, NewFileDataSource(t.TempDir()))
	_, err := resolver.Resolve(Reference{Kind: RefOutput, Value: "missing"}, SolType{Kind: KindUint, Bits: 256})
	if err == nil {
		t.Fatal("expected OutputNotFound")
	}
	coreErr, ok := err.(*Error)
	if !ok || coreErr.Kind != KindOutputNotFound {
		t.Fatalf("expected KindOutputNotFound, got %v", err)
	}
}

func TestResolverReadThenWriteChain(t *testing.T) {
	idx := NewOutputIndex()
	params := []Param{{Type: SolType{Kind: KindUint, Bits: 256}}}
	if err := idx.RecordOutput("q", params, []TypedValue{uintVal(42)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolver := NewResolver(idx, nil, NewFileDataSource(t.TempDir()))
	v, err := resolver.Resolve(Reference{Kind: RefOutput, Value: "q"}, SolType{Kind: KindUint, Bits: 256})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CanonicalString(v) != "42" {
		t.Fatalf("expected 42, got %s", CanonicalString(v))
	}
}
