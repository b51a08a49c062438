package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DataSource loads the three kinds of on-disk documents a DataReference
// can point at, caching each file for the lifetime of a run.
type DataSource interface {
	ContractJSON(path string) (map[string]any, error)
	VariableData(path string) (map[string]Variable, error)
	RawJSON(path string) (any, error)
}

// FileDataSource resolves DataReference.Path entries against a root
// directory, trying .json/.yml/.yaml in turn when the reference omits an
// extension, and caches every file it loads.
type FileDataSource struct {
	root string

	mu            sync.Mutex
	contractCache map[string]map[string]any
	variableCache map[string]map[string]Variable
	rawCache      map[string]any
}

// NewFileDataSource returns a DataSource rooted at dir.
func NewFileDataSource(dir string) *FileDataSource {
	return &FileDataSource{
		root:          dir,
		contractCache: make(map[string]map[string]any),
		variableCache: make(map[string]map[string]Variable),
		rawCache:      make(map[string]any),
	}
}

var dataFileExtensions = []string{"", ".json", ".yml", ".yaml"}

// resolveFile finds the first existing file under fds.root matching name
// with one of the candidate extensions appended.
func (fds *FileDataSource) resolveFile(name string) (string, []byte, error) {
	for _, ext := range dataFileExtensions {
		candidate := filepath.Join(fds.root, name+ext)
		b, err := os.ReadFile(candidate)
		if err == nil {
			return candidate, b, nil
		}
	}
	return "", nil, ErrConfig("no data file found for %q under %s", name, fds.root)
}

func decodeDocument(path string, raw []byte, out any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(raw, out)
	default:
		return yaml.Unmarshal(raw, out)
	}
}

// ContractJSON loads and normalizes a compiled-contract artifact: the
// file's top-level JSON/YAML object, with "bytecode" normalized to a bare
// 0x-prefixed hex string (accepting either a bare string or Foundry's
// {"object": "0x..."} shape) and "name" derived from the file's stem if
// not already present.
func (fds *FileDataSource) ContractJSON(name string) (map[string]any, error) {
	fds.mu.Lock()
	defer fds.mu.Unlock()
	if cached, ok := fds.contractCache[name]; ok {
		return cached, nil
	}

	path, raw, err := fds.resolveFile(name)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := decodeDocument(path, raw, &doc); err != nil {
		return nil, ErrConfig("parsing contract artifact %s: %v", path, err)
	}

	bytecode, ok := doc["bytecode"]
	if !ok {
		return nil, ErrConfig("contract artifact %s has no bytecode field", path)
	}
	switch b := bytecode.(type) {
	case string:
		doc["bytecode"] = b
	case map[string]any:
		obj, ok := b["object"].(string)
		if !ok {
			return nil, ErrConfig("contract artifact %s bytecode.object is not a string", path)
		}
		doc["bytecode"] = obj
	default:
		return nil, ErrConfig("contract artifact %s has an unrecognized bytecode shape", path)
	}

	if _, ok := doc["name"]; !ok {
		stem := filepath.Base(path)
		stem = strings.TrimSuffix(stem, filepath.Ext(stem))
		doc["name"] = stem
	}

	fds.contractCache[name] = doc
	return doc, nil
}

// VariableData loads a shared-variables file, a flat map of variable name
// to {ty, value}, matching the declared-variable shape used in Config.
func (fds *FileDataSource) VariableData(name string) (map[string]Variable, error) {
	fds.mu.Lock()
	defer fds.mu.Unlock()
	if cached, ok := fds.variableCache[name]; ok {
		return cached, nil
	}
	path, raw, err := fds.resolveFile(name)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]Variable)
	if err := decodeDocument(path, raw, &vars); err != nil {
		return nil, ErrConfig("parsing variables file %s: %v", path, err)
	}
	fds.variableCache[name] = vars
	return vars, nil
}

// RawJSON loads an arbitrary JSON/YAML document verbatim, for !data
// references against DataKindRaw entries.
func (fds *FileDataSource) RawJSON(name string) (any, error) {
	fds.mu.Lock()
	defer fds.mu.Unlock()
	if cached, ok := fds.rawCache[name]; ok {
		return cached, nil
	}
	path, raw, err := fds.resolveFile(name)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := decodeDocument(path, raw, &doc); err != nil {
		return nil, ErrConfig("parsing data file %s: %v", path, err)
	}
	fds.rawCache[name] = doc
	return doc, nil
}

// navigateJSON walks a generic JSON-shaped value (map[string]any,
// []any, or scalar) following a dotted/bracketed path like
// "metadata.settings.optimizer[0]".
func navigateJSON(root any, path string) (any, error) {
	if path == "" {
		return root, nil
	}
	segments, err := splitPathSegments(path)
	if err != nil {
		return nil, err
	}
	cur := root
	for _, seg := range segments {
		switch s := cur.(type) {
		case map[string]any:
			v, ok := s[seg.key]
			if !ok {
				return nil, ErrConfig("path %q: no field %q", path, seg.key)
			}
			cur = v
		default:
			if seg.key != "" {
				return nil, ErrConfig("path %q: %q is not an object", path, seg.key)
			}
		}
		for _, idx := range seg.indices {
			arr, ok := cur.([]any)
			if !ok {
				return nil, ErrConfig("path %q: not an array at index %d", path, idx)
			}
			if idx < 0 || idx >= len(arr) {
				return nil, ErrConfig("path %q: index %d out of range", path, idx)
			}
			cur = arr[idx]
		}
	}
	return cur, nil
}

type pathSegment struct {
	key     string
	indices []int
}

// splitPathSegments parses "a.b[0][1].c" into [{a},{b,[0,1]},{c}].
func splitPathSegments(path string) ([]pathSegment, error) {
	parts := strings.Split(path, ".")
	segments := make([]pathSegment, 0, len(parts))
	for _, part := range parts {
		seg := pathSegment{}
		name := part
		for {
			open := strings.IndexByte(name, '[')
			if open < 0 {
				break
			}
			close := strings.IndexByte(name, ']')
			if close < open {
				return nil, ErrConfig("malformed path segment %q", part)
			}
			n, err := strconv.Atoi(name[open+1 : close])
			if err != nil {
				return nil, ErrConfig("malformed array index in %q", part)
			}
			seg.indices = append(seg.indices, n)
			name = name[:open] + name[close+1:]
		}
		seg.key = name
		segments = append(segments, seg)
	}
	return segments, nil
}

// jsonLeafToTypedValue converts a navigated JSON leaf into a TypedValue
// per the contract/raw data conversion rules: 40-hex strings become
// addresses, 0x-prefixed strings become bytes, other strings stay
// strings, numbers become uint256, bools stay bools, and a
// {"object": "0x.."} shape (a compiler bytecode artifact) becomes bytes.
// Anything else (an arbitrary nested object or array) is serialized back
// to a JSON string rather than rejected, so navigation never dead-ends on
// a structurally rich but untyped leaf.
func jsonLeafToTypedValue(v any) (TypedValue, error) {
	switch val := v.(type) {
	case string:
		trimmed := strings.TrimPrefix(strings.TrimPrefix(val, "0x"), "0X")
		if len(trimmed) == 40 && isHex(trimmed) {
			return Coerce(SolType{Kind: KindAddress}, val)
		}
		if strings.HasPrefix(val, "0x") || strings.HasPrefix(val, "0X") {
			return Coerce(SolType{Kind: KindBytes}, val)
		}
		return TypedValue{Type: SolType{Kind: KindString}, Value: val}, nil
	case json.Number:
		return Coerce(SolType{Kind: KindUint, Bits: 256}, val.String())
	case float64:
		return Coerce(SolType{Kind: KindUint, Bits: 256}, strconv.FormatFloat(val, 'f', -1, 64))
	case int:
		return Coerce(SolType{Kind: KindUint, Bits: 256}, strconv.Itoa(val))
	case int64:
		return Coerce(SolType{Kind: KindUint, Bits: 256}, strconv.FormatInt(val, 10))
	case uint64:
		return Coerce(SolType{Kind: KindUint, Bits: 256}, strconv.FormatUint(val, 10))
	case bool:
		return TypedValue{Type: SolType{Kind: KindBool}, Value: val}, nil
	case map[string]any:
		if obj, ok := val["object"].(string); ok && len(val) == 1 {
			return Coerce(SolType{Kind: KindBytes}, obj)
		}
		encoded, err := json.Marshal(val)
		if err != nil {
			return TypedValue{}, ErrConfig("serializing object leaf: %v", err)
		}
		return TypedValue{Type: SolType{Kind: KindString}, Value: string(encoded)}, nil
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return TypedValue{}, ErrConfig("serializing leaf value: %v", err)
		}
		return TypedValue{Type: SolType{Kind: KindString}, Value: string(encoded)}, nil
	}
}

func isHex(s string) bool {
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F') {
			return false
		}
	}
	return len(s) > 0
}
