package core

import "strings"

// Resolver implements the hierarchical lookup every Reference goes
// through before an executor can use its value: local/declared variables
// first, then shared data-file variables, then recorded action outputs,
// then raw data-file navigation — literal references skip straight to
// type coercion.
type Resolver struct {
	index    *OutputIndex
	dataRefs map[string]DataReference
	source   DataSource
}

// NewResolver builds a Resolver over a run's output index, its Config's
// declared data references, and the backing file loader.
func NewResolver(index *OutputIndex, dataRefs map[string]DataReference, source DataSource) *Resolver {
	return &Resolver{index: index, dataRefs: dataRefs, source: source}
}

// Resolve resolves ref to a TypedValue of the expected SolType.
func (r *Resolver) Resolve(ref Reference, expected SolType) (TypedValue, error) {
	switch ref.Kind {
	case RefLiteral:
		text, err := r.index.Substitute(ref.Value)
		if err != nil {
			return TypedValue{}, err
		}
		return Coerce(expected, text)
	case RefVar:
		return r.resolveVar(ref.Value, expected)
	case RefOutput:
		v, ok := r.index.GetOutput(ref.Value)
		if !ok {
			return TypedValue{}, ErrOutputNotFound(ref.Value)
		}
		return v, nil
	case RefData:
		return r.resolveData(ref.Value, expected)
	default:
		return TypedValue{}, ErrConfig("reference has no kind set")
	}
}

// resolveVar looks up name first among locally declared variables
// (config.variables, seeded into the index at registration time), then
// among every shared variables data file declared under config.data.
// config.data is a map, so those files are searched in Go map iteration
// order: when more than one of them declares name, which one supplies
// the value is not defined.
func (r *Resolver) resolveVar(name string, expected SolType) (TypedValue, error) {
	if v, ok := r.index.GetVariable(name); ok {
		return v, nil
	}
	for _, ref := range r.dataRefs {
		if ref.Kind != DataKindVariables {
			continue
		}
		vars, err := r.source.VariableData(ref.Path)
		if err != nil {
			return TypedValue{}, err
		}
		decl, ok := vars[name]
		if !ok {
			continue
		}
		declType, err := ParseSolType(decl.Ty)
		if err != nil {
			return TypedValue{}, err
		}
		return Coerce(declType, decl.Value)
	}
	return TypedValue{}, ErrVariableNotFound(name)
}

// resolveData resolves a "<key>.<path...>" !data reference: key selects
// the DataReference declared under config.data, and the remainder
// navigates into that file's document per its kind.
func (r *Resolver) resolveData(ref string, expected SolType) (TypedValue, error) {
	key, rest, _ := strings.Cut(ref, ".")
	dataRef, ok := r.dataRefs[key]
	if !ok {
		return TypedValue{}, ErrConfig("no data reference declared for key %q", key)
	}
	switch dataRef.Kind {
	case DataKindContract:
		doc, err := r.source.ContractJSON(dataRef.Path)
		if err != nil {
			return TypedValue{}, err
		}
		leaf, err := navigateJSON(doc, rest)
		if err != nil {
			return TypedValue{}, err
		}
		return jsonLeafToTypedValue(leaf)
	case DataKindVariables:
		vars, err := r.source.VariableData(dataRef.Path)
		if err != nil {
			return TypedValue{}, err
		}
		decl, ok := vars[rest]
		if !ok {
			return TypedValue{}, ErrVariableNotFound(ref)
		}
		declType, err := ParseSolType(decl.Ty)
		if err != nil {
			return TypedValue{}, err
		}
		return Coerce(declType, decl.Value)
	case DataKindRaw:
		doc, err := r.source.RawJSON(dataRef.Path)
		if err != nil {
			return TypedValue{}, err
		}
		leaf, err := navigateJSON(doc, rest)
		if err != nil {
			return TypedValue{}, err
		}
		return jsonLeafToTypedValue(leaf)
	default:
		return TypedValue{}, ErrConfig("data reference %q has unknown kind %q", key, dataRef.Kind)
	}
}
