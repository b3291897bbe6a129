// Package scope maps a change (a list of changed file paths) onto the
// packages declared in the governance index.
package scope

import (
	"path/filepath"
	"strings"

	"aigov/internal/index"
	"aigov/internal/sortutil"
)

// keySegments is the number of leading path segments that name a package
// (e.g. apps/foo). It is fixed: packages nested deeper are not addressable.
const keySegments = 2

// KeyFor returns the candidate package key for a repository-relative path:
// its first two segments joined with '/'. Platform separators are accepted.
func KeyFor(path string) string {
	p := filepath.ToSlash(path)
	p = strings.TrimPrefix(p, "./")
	seg := strings.Split(p, "/")
	if len(seg) > keySegments {
		seg = seg[:keySegments]
	}
	return strings.Join(seg, "/")
}

// Resolve returns the sorted, de-duplicated set of package keys touched by
// files. Paths whose key is not declared in doc are ignored.
func Resolve(files []string, doc *index.Document) []string {
	seen := make(map[string]struct{})
	for _, f := range files {
		if f == "" {
			continue
		}
		key := KeyFor(f)
		if !doc.Has(key) {
			continue
		}
		seen[key] = struct{}{}
	}
	return sortutil.Keys(seen)
}

// Unreachable returns the declared keys no changed path can ever resolve to,
// such as keys with more than two segments. They are valid but never checked.
func Unreachable(doc *index.Document) []string {
	var out []string
	if doc == nil {
		return out
	}
	for _, key := range doc.KeyOrder {
		if key == "" || KeyFor(key) != key {
			out = append(out, key)
		}
	}
	return out
}
