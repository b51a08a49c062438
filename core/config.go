package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Variable is a declared value: a Solidity type and a literal text
// representation. Variables declared in Config.Variables are coerced once,
// when the config is registered with an engine; those read from a shared
// variables file are coerced each time a reference resolves them.
type Variable struct {
	Ty    string `yaml:"ty" json:"ty"`
	Value string `yaml:"value" json:"value"`
}

// DataKind selects how a named data reference's backing file is
// interpreted: as a compiled contract artifact, a shared variables file,
// or an arbitrary JSON/YAML document navigated by raw path.
type DataKind string

const (
	DataKindContract  DataKind = "contract"
	DataKindVariables DataKind = "variables"
	DataKindRaw       DataKind = "raw"
)

// DataReference names a file on disk and how to interpret it. It is
// declared once per key under Config.Data and then addressed from
// !data references as "<key>.<path...>".
type DataReference struct {
	Kind DataKind `yaml:"type" json:"type"`
	Path string   `yaml:"path" json:"path"`
}

// ActionType is the closed set of operations a pipeline action performs.
type ActionType string

const (
	ActionDeploy ActionType = "deploy"
	ActionWrite  ActionType = "write"
	ActionRead   ActionType = "read"
)

// CmpOp is the comparator a WriteCondition evaluates.
type CmpOp string

const (
	CmpLt  CmpOp = "lt"
	CmpLte CmpOp = "lte"
	CmpGt  CmpOp = "gt"
	CmpGte CmpOp = "gte"
	CmpEq  CmpOp = "eq"
	CmpNe  CmpOp = "ne"
)

// WriteCondition gates a write action: Left and Right are resolved as
// ValueType (uint256 if unset) and compared with Op before the call is
// attempted. When the comparison is false the write is skipped and the
// action is reported successful with no recorded output.
type WriteCondition struct {
	Left      Reference `yaml:"left" json:"left"`
	Op        CmpOp     `yaml:"cmp" json:"cmp"`
	Right     Reference `yaml:"right" json:"right"`
	ValueType string    `yaml:"value_type,omitempty" json:"value_type,omitempty"`
}

// DeployAction describes a CREATE2 deployment: Bytecode is the contract's
// init code, ConstructorAbiItem (optional) describes how to ABI-encode
// ConstructorArgs and append them, Salt is the CREATE2 salt, and Address
// is the expected address declared in the config, which the computed
// CREATE2 address is checked against.
type DeployAction struct {
	Bytecode           Reference   `yaml:"bytecode" json:"bytecode"`
	ConstructorAbiItem string      `yaml:"constructor_abi_item,omitempty" json:"constructor_abi_item,omitempty"`
	ConstructorArgs    []Reference `yaml:"constructor_args,omitempty" json:"constructor_args,omitempty"`
	Salt               Reference   `yaml:"salt" json:"salt"`
	Address            Reference   `yaml:"address" json:"address"`
}

// WriteAction describes a state-mutating call.
type WriteAction struct {
	Address   Reference       `yaml:"address" json:"address"`
	AbiItem   string          `yaml:"abi_item" json:"abi_item"`
	Args      []Reference     `yaml:"args,omitempty" json:"args,omitempty"`
	Value     Reference       `yaml:"value,omitempty" json:"value,omitempty"`
	Condition *WriteCondition `yaml:"condition,omitempty" json:"condition,omitempty"`
}

// ReadAction describes a view-function call.
type ReadAction struct {
	Address Reference   `yaml:"address" json:"address"`
	AbiItem string      `yaml:"abi_item" json:"abi_item"`
	Args    []Reference `yaml:"args,omitempty" json:"args,omitempty"`
}

// ActionData is the tagged union of what an Action does, serialized as
// {"type": "deploy"|"write"|"read", "content": {...}}.
type ActionData struct {
	Type   ActionType
	Deploy *DeployAction
	Write  *WriteAction
	Read   *ReadAction
}

type actionDataShape[T any] struct {
	Type    ActionType `yaml:"type" json:"type"`
	Content T          `yaml:"content" json:"content"`
}

func (a *ActionData) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Type ActionType `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return ErrConfig("action_data missing a type tag: %v", err)
	}
	switch head.Type {
	case ActionDeploy:
		var shape actionDataShape[DeployAction]
		if err := node.Decode(&shape); err != nil {
			return ErrConfig("invalid deploy action: %v", err)
		}
		a.Type, a.Deploy = ActionDeploy, &shape.Content
	case ActionWrite:
		var shape actionDataShape[WriteAction]
		if err := node.Decode(&shape); err != nil {
			return ErrConfig("invalid write action: %v", err)
		}
		a.Type, a.Write = ActionWrite, &shape.Content
	case ActionRead:
		var shape actionDataShape[ReadAction]
		if err := node.Decode(&shape); err != nil {
			return ErrConfig("invalid read action: %v", err)
		}
		a.Type, a.Read = ActionRead, &shape.Content
	default:
		return ErrConfig("unknown action type %q", head.Type)
	}
	return nil
}

func (a ActionData) MarshalYAML() (any, error) {
	switch a.Type {
	case ActionDeploy:
		return actionDataShape[*DeployAction]{Type: ActionDeploy, Content: a.Deploy}, nil
	case ActionWrite:
		return actionDataShape[*WriteAction]{Type: ActionWrite, Content: a.Write}, nil
	case ActionRead:
		return actionDataShape[*ReadAction]{Type: ActionRead, Content: a.Read}, nil
	default:
		return nil, ErrConfig("action_data has no content set")
	}
}

func (a *ActionData) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ActionType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return ErrConfig("action_data missing a type tag: %v", err)
	}
	switch head.Type {
	case ActionDeploy:
		var shape actionDataShape[DeployAction]
		if err := json.Unmarshal(data, &shape); err != nil {
			return ErrConfig("invalid deploy action: %v", err)
		}
		a.Type, a.Deploy = ActionDeploy, &shape.Content
	case ActionWrite:
		var shape actionDataShape[WriteAction]
		if err := json.Unmarshal(data, &shape); err != nil {
			return ErrConfig("invalid write action: %v", err)
		}
		a.Type, a.Write = ActionWrite, &shape.Content
	case ActionRead:
		var shape actionDataShape[ReadAction]
		if err := json.Unmarshal(data, &shape); err != nil {
			return ErrConfig("invalid read action: %v", err)
		}
		a.Type, a.Read = ActionRead, &shape.Content
	default:
		return ErrConfig("unknown action type %q", head.Type)
	}
	return nil
}

func (a ActionData) MarshalJSON() ([]byte, error) {
	v, err := a.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Action is a single node in the dependency graph: an ID other actions
// reference in DependsOn, and the typed payload describing what to do.
type Action struct {
	ID         string     `yaml:"id" json:"id"`
	DependsOn  []string   `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Data       ActionData `yaml:"action_data" json:"action_data"`
}

// Config is the full deserialized pipeline: declared variables, named
// data references, and the list of actions to schedule and execute.
type Config struct {
	Variables map[string]Variable      `yaml:"variables,omitempty" json:"variables,omitempty"`
	Data      map[string]DataReference `yaml:"data,omitempty" json:"data,omitempty"`
	Actions   []Action                 `yaml:"actions" json:"actions"`
}

// LoadConfig reads a pipeline config from path, choosing YAML or JSON
// decoding by file extension.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrConfig("reading config %s: %v", path, err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, ErrConfig("parsing JSON config %s: %v", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, ErrConfig("parsing YAML config %s: %v", path, err)
		}
	default:
		return nil, ErrConfig("unrecognized config extension for %s (want .yaml, .yml, or .json)", path)
	}
	if len(cfg.Actions) == 0 {
		return &cfg, nil
	}
	seen := make(map[string]bool, len(cfg.Actions))
	for _, a := range cfg.Actions {
		if a.ID == "" {
			return nil, ErrConfig("action missing an id")
		}
		if seen[a.ID] {
			return nil, ErrConfig("duplicate action id %q", a.ID)
		}
		seen[a.ID] = true
	}
	return &cfg, nil
}
