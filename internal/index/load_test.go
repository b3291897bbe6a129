package index

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeIndex(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "AI_INDEX.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	return p
}

func TestLoadMissingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope.yml")
	_, err := Load(p)
	var missing *MissingIndexError
	if !errors.As(err, &missing) {
		t.Fatalf("want MissingIndexError, got %v", err)
	}
	if missing.Path != p {
		t.Fatalf("path=%q", missing.Path)
	}
}

func TestLoadMalformed(t *testing.T) {
	p := writeIndex(t, "packages: [unclosed\n")
	_, err := Load(p)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("want ParseError, got %v", err)
	}
}

func TestLoadPackages(t *testing.T) {
	p := writeIndex(t, `
packages:
  apps/foo:
    owners: [alice, bob]
    invariants: []
    tier: 2
  libs/bar:
    owners: [carol]
    invariants:
      - "never panics"
  apps/empty:
`)
	doc, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Path != p {
		t.Fatalf("doc path=%q", doc.Path)
	}
	if want := []string{"apps/foo", "libs/bar", "apps/empty"}; !reflect.DeepEqual(doc.KeyOrder, want) {
		t.Fatalf("key order got %v want %v", doc.KeyOrder, want)
	}
	foo := doc.Entry("apps/foo")
	if foo == nil || !reflect.DeepEqual(foo.Owners, []string{"alice", "bob"}) {
		t.Fatalf("apps/foo owners: %#v", foo)
	}
	if len(foo.Invariants) != 0 {
		t.Fatalf("apps/foo invariants should be empty: %v", foo.Invariants)
	}
	if foo.Extra["tier"] != float64(2) {
		t.Fatalf("extra tier should be normalized to float64, got %#v", foo.Extra["tier"])
	}
	if !doc.Has("apps/empty") || doc.Entry("apps/empty") != nil {
		t.Fatalf("null entry must be declared with a nil entry")
	}
	if doc.Has("apps/other") {
		t.Fatalf("unexpected key apps/other")
	}
}

func TestParseEmptyInput(t *testing.T) {
	doc, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Raw != nil || len(doc.Packages) != 0 {
		t.Fatalf("expected empty document, got %#v", doc)
	}
}

func TestParseNormalizesNonStringKeysAndTimes(t *testing.T) {
	doc, err := Parse([]byte("1: one\ndate: 2024-01-02T03:04:05Z\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root, ok := doc.Raw.(map[string]any)
	if !ok {
		t.Fatalf("raw root type %T", doc.Raw)
	}
	if root["1"] != "one" {
		t.Fatalf("int key not normalized: %#v", root)
	}
	if root["date"] != "2024-01-02T03:04:05Z" {
		t.Fatalf("timestamp not normalized: %#v", root["date"])
	}
}

func TestEntryValues(t *testing.T) {
	e := &Entry{Owners: []string{"a"}, Invariants: []string{"b"}}
	if got := e.Values(FieldOwners); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("owners=%v", got)
	}
	if got := e.Values(FieldInvariants); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("invariants=%v", got)
	}
	var nilEntry *Entry
	if nilEntry.Values(FieldOwners) != nil {
		t.Fatalf("nil entry must have no values")
	}
}
