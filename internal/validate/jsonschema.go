package validate

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SchemaLoadError reports a schema file that is missing, unreadable or not a
// usable JSON Schema.
type SchemaLoadError struct {
	Path string
	Err  error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("load schema %s: %v", e.Path, e.Err)
}

func (e *SchemaLoadError) Unwrap() error { return e.Err }

// defaultSchemaURL names schemas parsed from memory. Relative $refs in such a
// schema resolve against the working directory.
const defaultSchemaURL = "ai_index.schema.json"

// Schema is a compiled index schema.
type Schema struct {
	Path string
	sch  *jsonschema.Schema
}

// LoadSchema reads and compiles the JSON Schema at path. Relative $refs
// resolve against path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &SchemaLoadError{Path: path, Err: fs.ErrNotExist}
		}
		return nil, &SchemaLoadError{Path: path, Err: err}
	}
	s, err := compile(path, data)
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Err: err}
	}
	s.Path = path
	return s, nil
}

// ParseSchema compiles a JSON Schema document.
func ParseSchema(data []byte) (*Schema, error) {
	return compile(defaultSchemaURL, data)
}

func compile(url string, data []byte) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{sch: sch}, nil
}

var printer = message.NewPrinter(language.English)

// validate runs the schema over raw and records every failing keyword. shape
// holds the paths the built-in checks already reported as missing or of the
// wrong type; schema type and required errors at those paths repeat them.
func (s *Schema) validate(raw any, shape map[string]struct{}, errs *errlist) {
	err := s.sch.Validate(raw)
	if err == nil {
		return
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		errs.add("", "", "%v", err)
		return
	}
	for _, leaf := range leaves(ve, nil) {
		key, path := instancePath(leaf.InstanceLocation)
		if repeats(leaf.ErrorKind, path, shape) {
			continue
		}
		errs.add(key, path, "%s", leaf.ErrorKind.LocalizedString(printer))
	}
}

func repeats(k jsonschema.ErrorKind, path string, shape map[string]struct{}) bool {
	switch k := k.(type) {
	case *kind.Type:
		_, ok := shape[path]
		return ok
	case *kind.Required:
		for _, name := range k.Missing {
			if _, ok := shape[childPath(path, name)]; !ok {
				return false
			}
		}
		return len(k.Missing) > 0
	}
	return false
}

// leaves flattens the cause tree of e into its failing keywords.
func leaves(e *jsonschema.ValidationError, out []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(e.Causes) == 0 {
		return append(out, e)
	}
	for _, c := range e.Causes {
		out = leaves(c, out)
	}
	return out
}

// instancePath renders a JSON pointer the way the built-in checks do, e.g.
// packages["apps/foo"].owners[1], and returns the package key it falls under
// ("" outside packages).
func instancePath(loc []string) (key, path string) {
	if len(loc) >= 2 && loc[0] == "packages" {
		key = loc[1]
		path = entryPath(key)
		loc = loc[2:]
	}
	for _, tok := range loc {
		if _, err := strconv.Atoi(tok); err == nil && path != "" {
			path += "[" + tok + "]"
			continue
		}
		path = childPath(path, tok)
	}
	return key, path
}

func childPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
