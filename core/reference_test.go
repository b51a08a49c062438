package core

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestReferenceYAMLTagForms(t *testing.T) {
	cases := []struct {
		yaml string
		kind RefKind
		val  string
	}{
		{"amount", RefLiteral, "amount"},
		{"!var owner", RefVar, "owner"},
		{"!output deploy_token", RefOutput, "deploy_token"},
		{"!data token.bytecode", RefData, "token.bytecode"},
	}
	for _, c := range cases {
		var ref Reference
		if err := yaml.Unmarshal([]byte(c.yaml), &ref); err != nil {
			t.Fatalf("unmarshaling %q: %v", c.yaml, err)
		}
		if ref.Kind != c.kind || ref.Value != c.val {
			t.Fatalf("unmarshaling %q: got {%s %s}, want {%s %s}", c.yaml, ref.Kind, ref.Value, c.kind, c.val)
		}
	}
}

func TestReferenceYAMLUnknownTagRejected(t *testing.T) {
	var ref Reference
	if err := yaml.Unmarshal([]byte("!bogus x"), &ref); err == nil {
		t.Fatal("expected an error for an unrecognized reference tag")
	}
}

func TestReferenceJSONDiscriminatedRoundTrip(t *testing.T) {
	refs := []Reference{
		{Kind: RefLiteral, Value: "1000"},
		{Kind: RefVar, Value: "owner"},
		{Kind: RefOutput, Value: "deploy_token"},
		{Kind: RefData, Value: "token.bytecode"},
	}
	for _, want := range refs {
		encoded, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshaling %+v: %v", want, err)
		}
		var got Reference
		if err := json.Unmarshal(encoded, &got); err != nil {
			t.Fatalf("unmarshaling %s: %v", encoded, err)
		}
		if got != want {
			t.Fatalf("round-trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestReferenceJSONAcceptsBareStringAsLiteral(t *testing.T) {
	var ref Reference
	if err := json.Unmarshal([]byte(`"1000"`), &ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != RefLiteral || ref.Value != "1000" {
		t.Fatalf("expected a literal shorthand, got %+v", ref)
	}
}

// TestReferenceYAMLToJSONRoundTrip exercises the same Reference through a
// YAML parse followed by a JSON marshal/unmarshal pair, mirroring the
// round-trip invariant a Config as a whole is expected to satisfy.
func TestReferenceYAMLToJSONRoundTrip(t *testing.T) {
	var fromYAML Reference
	if err := yaml.Unmarshal([]byte("!output deploy_token"), &fromYAML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	encoded, err := json.Marshal(fromYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var fromJSON Reference
	if err := json.Unmarshal(encoded, &fromJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromJSON != fromYAML {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", fromJSON, fromYAML)
	}
}
