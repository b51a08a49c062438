package core

import (
	"fmt"
	"regexp"
	"sync"
)

// indexEntry pairs a resolved value with the SolType it was recorded
// under, so later lookups can report type mismatches precisely.
type indexEntry struct {
	Type  SolType
	Value TypedValue
}

// OutputIndex is the run-scoped store of declared variables and recorded
// action outputs. Outputs are append-only: once a path is written, it is
// never rewritten.
type OutputIndex struct {
	mu        sync.RWMutex
	variables map[string]indexEntry
	outputs   map[string]indexEntry
}

// NewOutputIndex returns an empty index.
func NewOutputIndex() *OutputIndex {
	return &OutputIndex{
		variables: make(map[string]indexEntry),
		outputs:   make(map[string]indexEntry),
	}
}

// SaveVariable records a top-level declared variable. Config variable
// names are unique by construction; a duplicate save is a programming
// error in the caller, not a condition this index tries to paper over.
func (idx *OutputIndex) SaveVariable(name string, typ SolType, value TypedValue) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.variables[name] = indexEntry{Type: typ, Value: value}
}

// GetVariable looks up a declared variable by name.
func (idx *OutputIndex) GetVariable(name string) (TypedValue, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.variables[name]
	if !ok {
		return TypedValue{}, false
	}
	return e.Value, true
}

// GetOutput looks up a previously recorded output by its flattened path.
func (idx *OutputIndex) GetOutput(path string) (TypedValue, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.outputs[path]
	if !ok {
		return TypedValue{}, false
	}
	return e.Value, true
}

// Get performs a direct path lookup, checking recorded outputs first and
// then declared variables. It backs Substitute's "${path}" expansion.
func (idx *OutputIndex) Get(path string) (TypedValue, bool) {
	if v, ok := idx.GetOutput(path); ok {
		return v, true
	}
	return idx.GetVariable(path)
}

var templatePattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Substitute expands every "${path}" occurrence in text with the looked-up
// value's canonical string form, leaving text untouched if it contains no
// such form. It errors if a referenced path resolves to nothing.
func (idx *OutputIndex) Substitute(text string) (string, error) {
	var outerErr error
	result := templatePattern.ReplaceAllStringFunc(text, func(match string) string {
		if outerErr != nil {
			return match
		}
		path := templatePattern.FindStringSubmatch(match)[1]
		v, ok := idx.Get(path)
		if !ok {
			outerErr = ErrConfig("template reference %q not found", path)
			return match
		}
		return CanonicalString(v)
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}

// RecordOutput flattens a deploy/write/read action's typed results and
// indexes each leaf. Each top-level (param, value) pair is indexed under
// actionID directly — a param with an empty name (the deploy synthetic
// param, or a single unnamed read output) stores exactly at actionID; a
// named param stores at "actionID.name"; struct/array results recurse
// further into "<path>.<field>" and "<path>[<i>]".
func (idx *OutputIndex) RecordOutput(actionID string, params []Param, values []TypedValue) error {
	if len(params) != len(values) {
		return ErrExecution("record output for action %s: length mismatch (%d params, %d values)", actionID, len(params), len(values))
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, p := range params {
		if err := idx.index(actionID, p, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// keyFor computes the path a param stores at beneath prefix: an empty
// name leaves the key unchanged (the deploy/bare-output convention),
// otherwise the name is appended with a dot unless prefix is itself
// empty.
func keyFor(prefix, name string) string {
	switch {
	case name == "":
		return prefix
	case prefix == "":
		return name
	default:
		return prefix + "." + name
	}
}

// index recursively indexes a single named value beneath prefix.
func (idx *OutputIndex) index(prefix string, param Param, value TypedValue) error {
	key := keyFor(prefix, param.Name)
	switch param.Type.Kind {
	case KindTuple:
		if err := idx.set(key, param.Type, value); err != nil {
			return err
		}
		elems := value.Value.([]TypedValue)
		for i, comp := range param.Type.Components {
			if err := idx.index(key, comp, elems[i]); err != nil {
				return err
			}
		}
		return nil
	case KindArray, KindFixedArray:
		if err := idx.set(key, param.Type, value); err != nil {
			return err
		}
		elems := value.Value.([]TypedValue)
		elemParam := Param{Type: *param.Type.Elem}
		for i, e := range elems {
			elemPrefix := fmt.Sprintf("%s[%d]", key, i)
			if err := idx.index(elemPrefix, elemParam, e); err != nil {
				return err
			}
		}
		return nil
	default:
		return idx.set(key, param.Type, value)
	}
}

func (idx *OutputIndex) set(path string, typ SolType, value TypedValue) error {
	if _, exists := idx.outputs[path]; exists {
		return ErrConfig("output index already has an entry at %q", path)
	}
	idx.outputs[path] = indexEntry{Type: typ, Value: value}
	return nil
}
