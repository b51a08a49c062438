package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestEngineEmptyPipeline(t *testing.T) {
	engine := NewEngine(newStubProvider(), NewFileDataSource(t.TempDir()), nil)
	cfg := &Config{}
	if err := engine.RegisterConfig(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.State() != StateTerminal {
		t.Fatalf("expected terminal state, got %s", engine.State())
	}
}

func TestEngineCycleFailsRegistration(t *testing.T) {
	engine := NewEngine(newStubProvider(), NewFileDataSource(t.TempDir()), nil)
	cfg := &Config{
		Actions: []Action{
			{ID: "a", DependsOn: []string{"b"}, Data: ActionData{Type: ActionWrite, Write: &WriteAction{}}},
			{ID: "b", DependsOn: []string{"a"}, Data: ActionData{Type: ActionWrite, Write: &WriteAction{}}},
		},
	}
	if err := engine.RegisterConfig(cfg); err == nil {
		t.Fatal("expected a cycle error during registration")
	}
}

func TestEngineVariablePrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared.yml", "owner:\n  ty: address\n  value: \"0x0000000000000000000000000000000000000BBB\"\n")

	engine := NewEngine(newStubProvider(), NewFileDataSource(dir), nil)
	cfg := &Config{
		Variables: map[string]Variable{
			"owner": {Ty: "address", Value: "0x000000000000000000000000000000000000AAAA"},
		},
		Data: map[string]DataReference{
			"shared": {Kind: DataKindVariables, Path: "shared"},
		},
	}
	if err := engine.RegisterConfig(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := engine.resolver.Resolve(Reference{Kind: RefVar, Value: "owner"}, SolType{Kind: KindAddress})
	if err != nil {
		t.Fatalf("expected owner to resolve, got %v", err)
	}
	if CanonicalString(v) != "0x000000000000000000000000000000000000aaaa" {
		t.Fatalf("expected local variable to win, got %s", CanonicalString(v))
	}
}

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
