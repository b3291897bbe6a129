package validate

import (
	"sort"
	"strings"

	"aigov/internal/diff"
	"aigov/internal/index"
)

// OrderReport describes package keys that are not written in sorted order.
// Patch is a unified diff from the current order to the sorted one.
type OrderReport struct {
	Path  string
	Patch string
}

// KeyOrder checks that doc lists its packages sorted by key, which keeps
// index edits reviewable and merges conflict-free. It returns nil when the
// order is fine.
func KeyOrder(doc *index.Document, opt diff.Options) *OrderReport {
	if doc == nil || len(doc.KeyOrder) < 2 {
		return nil
	}
	if sort.StringsAreSorted(doc.KeyOrder) {
		return nil
	}
	want := append([]string(nil), doc.KeyOrder...)
	sort.Strings(want)

	name := doc.Path
	if name == "" {
		name = "AI_INDEX.yml"
	}
	patch, _ := diff.Unified(name+" (packages)", name+" (sorted)",
		[]byte(lines(doc.KeyOrder)), []byte(lines(want)), opt)
	return &OrderReport{Path: name, Patch: patch}
}

func lines(keys []string) string {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('\n')
	}
	return b.String()
}
