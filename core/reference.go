package core

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// RefKind is the closed set of reference variants a Reference can carry.
type RefKind string

const (
	RefLiteral RefKind = "literal"
	RefVar     RefKind = "var"
	RefOutput  RefKind = "output"
	RefData    RefKind = "data"
)

// Reference is a tagged value appearing anywhere a Config slot accepts an
// argument: a bare literal, or a !var/!output/!data lookup to resolve
// later against the index, the data source layer, or another action's
// recorded output.
type Reference struct {
	Kind  RefKind
	Value string
}

// UnmarshalYAML decodes a Reference from either a plain scalar (a
// literal) or a tagged scalar (!var, !output, !data).
func (r *Reference) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return ErrConfig("reference must be a scalar, got %v", node.Kind)
	}
	switch node.Tag {
	case "", "!!str", "!!int", "!!float", "!!bool":
		r.Kind = RefLiteral
		r.Value = node.Value
	case "!var":
		r.Kind = RefVar
		r.Value = node.Value
	case "!output":
		r.Kind = RefOutput
		r.Value = node.Value
	case "!data":
		r.Kind = RefData
		r.Value = node.Value
	default:
		return ErrConfig("unknown reference tag %q", node.Tag)
	}
	return nil
}

// MarshalYAML re-emits the tag that round-trips a Reference.
func (r Reference) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.ScalarNode, Value: r.Value}
	switch r.Kind {
	case RefLiteral:
		node.Tag = "!!str"
	case RefVar:
		node.Tag = "!var"
	case RefOutput:
		node.Tag = "!output"
	case RefData:
		node.Tag = "!data"
	}
	return node, nil
}

// jsonReference is the explicit discriminator form the JSON-isomorphic
// config uses in place of YAML tags.
type jsonReference struct {
	RefType string `json:"ref_type"`
	Value   string `json:"value"`
}

// UnmarshalJSON accepts either a bare JSON string (a literal shorthand)
// or the {"ref_type": "...", "value": "..."} discriminated form.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Kind = RefLiteral
		r.Value = s
		return nil
	}
	var jr jsonReference
	if err := json.Unmarshal(data, &jr); err != nil {
		return ErrConfig("invalid reference JSON: %v", err)
	}
	switch RefKind(jr.RefType) {
	case RefLiteral, RefVar, RefOutput, RefData:
		r.Kind = RefKind(jr.RefType)
	default:
		return ErrConfig("unknown ref_type %q", jr.RefType)
	}
	r.Value = jr.Value
	return nil
}

// MarshalJSON always emits the discriminated form.
func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonReference{RefType: string(r.Kind), Value: r.Value})
}
