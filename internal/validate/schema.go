// Package validate checks a loaded governance index against its structural
// contract before any semantic check runs.
//
// Two layers run in one pass and their findings are merged:
//   - Built-in structure: the shape the invariant checker relies on
//     (packages mapping, entry mappings, string lists).
//   - The declared JSON Schema (.ai/schemas/ai_index.schema.json).
//
// Nothing is fail-fast: every violation is collected so the caller can
// report them all at once.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"aigov/internal/index"
	"aigov/internal/sortutil"
)

// Violation is one structural problem found in the index.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// SchemaInvalidError carries every violation found in a document.
type SchemaInvalidError struct {
	Violations []Violation
}

func (e *SchemaInvalidError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "schema errors:\n" + strings.Join(msgs, "\n")
}

// Check validates doc and returns a *SchemaInvalidError when anything is
// wrong, nil otherwise.
func Check(doc *index.Document, s *Schema) error {
	if vs := Document(doc, s); len(vs) > 0 {
		return &SchemaInvalidError{Violations: vs}
	}
	return nil
}

// Document returns all violations of doc, root problems first and then per
// package in key order. s may be nil, in which case only the built-in
// structure is checked.
func Document(doc *index.Document, s *Schema) []Violation {
	var errs errlist
	var raw any
	if doc != nil {
		raw = doc.Raw
	}
	shape := structure(raw, &errs)
	if s != nil {
		s.validate(raw, shape, &errs)
	}
	return errs.sorted()
}

// structure runs the built-in checks and returns the paths it found missing
// or of the wrong shape.
func structure(raw any, errs *errlist) map[string]struct{} {
	shape := make(map[string]struct{})
	root, ok := raw.(map[string]any)
	if !ok {
		errs.add("", "", "document must be a mapping, got %s", kindOf(raw))
		shape[""] = struct{}{}
		return shape
	}
	v, ok := root["packages"]
	if !ok {
		errs.add("", "", "missing required field %q", "packages")
		shape["packages"] = struct{}{}
		return shape
	}
	pk, ok := v.(map[string]any)
	if !ok {
		errs.add("", "packages", "must be a mapping, got %s", kindOf(v))
		shape["packages"] = struct{}{}
		return shape
	}
	for _, key := range sortutil.Keys(pk) {
		path := entryPath(key)
		switch e := pk[key].(type) {
		case nil:
		case map[string]any:
			for _, f := range index.RequiredFields {
				fv, present := e[string(f)]
				if !present {
					continue
				}
				stringListProblems(fv, key, path+"."+string(f), errs, shape)
			}
		default:
			errs.add(key, path, "must be a mapping, got %s", kindOf(e))
			shape[path] = struct{}{}
		}
	}
	return shape
}

func stringListProblems(v any, key, path string, errs *errlist, shape map[string]struct{}) {
	list, ok := v.([]any)
	if !ok {
		errs.add(key, path, "must be a list of strings, got %s", kindOf(v))
		shape[path] = struct{}{}
		return
	}
	for i, e := range list {
		if _, ok := e.(string); !ok {
			p := fmt.Sprintf("%s[%d]", path, i)
			errs.add(key, p, "must be a string, got %s", kindOf(e))
			shape[p] = struct{}{}
		}
	}
}

func entryPath(key string) string {
	return fmt.Sprintf("packages[%q]", key)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// errlist aggregates violations. Each violation is attributed to a package
// key ("" for the document root) so the result can be ordered root first,
// then by key and path. Identical violations are recorded once.
type errlist struct {
	items []errItem
	seen  map[Violation]struct{}
}

type errItem struct {
	key string
	v   Violation
}

func (e *errlist) add(key, path, format string, args ...any) {
	if e == nil {
		return
	}
	v := Violation{Path: path, Message: fmt.Sprintf(format, args...)}
	if e.seen == nil {
		e.seen = make(map[Violation]struct{})
	}
	if _, dup := e.seen[v]; dup {
		return
	}
	e.seen[v] = struct{}{}
	e.items = append(e.items, errItem{key: key, v: v})
}

// sorted orders by key, then path. Findings at the same path keep the order
// they were added in, built-in checks first.
func (e *errlist) sorted() []Violation {
	if e == nil || len(e.items) == 0 {
		return nil
	}
	sort.SliceStable(e.items, func(i, j int) bool {
		a, b := e.items[i], e.items[j]
		if a.key != b.key {
			return a.key < b.key
		}
		return a.v.Path < b.v.Path
	})
	out := make([]Violation, len(e.items))
	for i, it := range e.items {
		out[i] = it.v
	}
	return out
}
