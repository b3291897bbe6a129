// Package index loads the governance index (.ai/AI_INDEX.yml) into memory.
//
// The file is YAML. Loading produces two views of it: a JSON-shaped tree for
// schema validation and a typed, lenient view of the packages mapping for the
// invariant checker. Structural problems are never reported here; that is the
// validator's job.
package index

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// MissingIndexError reports that the index file does not exist.
type MissingIndexError struct {
	Path string
}

func (e *MissingIndexError) Error() string {
	return "missing " + e.Path
}

// ParseError reports a malformed index file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads and decodes the index at path. Only the first YAML document in
// the file is used.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingIndexError{Path: path}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	doc.Path = path
	return doc, nil
}

// Parse decodes index content. An empty input yields an empty document.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{}, nil
		}
		return nil, err
	}
	var tree any
	if err := root.Decode(&tree); err != nil {
		return nil, err
	}
	raw, err := normalize(tree)
	if err != nil {
		return nil, err
	}
	doc := &Document{Raw: raw, KeyOrder: packageKeyOrder(&root)}
	doc.Packages = typedPackages(raw)
	return doc, nil
}

// packageKeyOrder walks the node tree for root.packages and returns its keys
// in file order.
func packageKeyOrder(root *yaml.Node) []string {
	n := root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value != "packages" {
			continue
		}
		pk := n.Content[i+1]
		if pk.Kind != yaml.MappingNode {
			return nil
		}
		keys := make([]string, 0, len(pk.Content)/2)
		for j := 0; j+1 < len(pk.Content); j += 2 {
			keys = append(keys, pk.Content[j].Value)
		}
		return keys
	}
	return nil
}

// normalize converts a yaml.v3 decoded tree into JSON-shaped values.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case float32:
		return float64(t), nil
	case time.Time:
		return t.Format(time.RFC3339), nil
	case []byte:
		return string(t), nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			key, err := mapKey(k)
			if err != nil {
				return nil, err
			}
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported YAML value of type %T", v)
}

func mapKey(k any) (string, error) {
	switch t := k.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case nil:
		return "null", nil
	}
	return "", fmt.Errorf("unsupported mapping key of type %T", k)
}

// typedPackages builds the lenient typed view of raw.packages. Values of the
// wrong shape are dropped here; the validator reports them.
func typedPackages(raw any) map[string]*Entry {
	root, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	pk, ok := root["packages"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]*Entry, len(pk))
	for key, v := range pk {
		m, ok := v.(map[string]any)
		if !ok {
			out[key] = nil
			continue
		}
		e := &Entry{
			Owners:     stringList(m[string(FieldOwners)]),
			Invariants: stringList(m[string(FieldInvariants)]),
		}
		for k, x := range m {
			if k == string(FieldOwners) || k == string(FieldInvariants) {
				continue
			}
			if e.Extra == nil {
				e.Extra = make(map[string]any)
			}
			e.Extra[k] = x
		}
		out[key] = e
	}
	return out
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
