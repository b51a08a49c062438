package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDataReferenceDecodesTypeTag(t *testing.T) {
	var ref DataReference
	if err := yaml.Unmarshal([]byte("type: contract\npath: Token\n"), &ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != DataKindContract || ref.Path != "Token" {
		t.Fatalf("unexpected reference: %+v", ref)
	}
}

func TestLoadConfigYAMLWithDataTypeTag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	doc := fmt.Sprintf(`
data:
  token:
    type: contract
    path: Token
actions:
  - id: deploy_token
    action_data:
      type: deploy
      content:
        bytecode: "0x00"
        salt: "0x%s"
        address: "0x0000000000000000000000000000000000000001"
`, strings.Repeat("0", 64))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dataRef, ok := cfg.Data["token"]
	if !ok || dataRef.Kind != DataKindContract || dataRef.Path != "Token" {
		t.Fatalf("expected a contract data reference, got %+v (ok=%v)", dataRef, ok)
	}
	if len(cfg.Actions) != 1 || cfg.Actions[0].Data.Type != ActionDeploy {
		t.Fatalf("expected one deploy action, got %+v", cfg.Actions)
	}
}
