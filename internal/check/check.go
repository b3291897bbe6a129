// Package check enforces governance fields on the packages a change touches.
package check

import (
	"fmt"

	"aigov/internal/index"
	"aigov/internal/sortutil"
)

// Result is the compliance verdict for one touched package. It is either
// Compliant or NonCompliant.
type Result interface {
	PackageKey() string
	isResult()
}

// Compliant is a touched package with every required field filled in.
type Compliant struct {
	Key string
}

// NonCompliant is a touched package with at least one required field absent
// or empty. Missing follows index.RequiredFields order.
type NonCompliant struct {
	Key     string
	Missing []index.Field
}

func (c Compliant) PackageKey() string { return c.Key }
func (Compliant) isResult()            {}

func (n NonCompliant) PackageKey() string { return n.Key }
func (NonCompliant) isResult()            {}

// MissingGovernanceFieldError reports one required field missing from one
// touched package.
type MissingGovernanceFieldError struct {
	Key   string
	Field index.Field
}

func (e *MissingGovernanceFieldError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Key, e.Field)
}

// Evaluate returns one result per touched key, in ascending key order.
// Keys not declared in doc are skipped; untouched packages are never
// inspected.
func Evaluate(doc *index.Document, touched []string) []Result {
	keys := make(map[string]struct{}, len(touched))
	for _, k := range touched {
		if doc.Has(k) {
			keys[k] = struct{}{}
		}
	}
	out := make([]Result, 0, len(keys))
	for _, k := range sortutil.Keys(keys) {
		out = append(out, evaluate(k, doc.Entry(k)))
	}
	return out
}

func evaluate(key string, e *index.Entry) Result {
	var missing []index.Field
	for _, f := range index.RequiredFields {
		if len(e.Values(f)) == 0 {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return Compliant{Key: key}
	}
	return NonCompliant{Key: key, Missing: missing}
}

// Diagnostics flattens results into one error per missing field, keeping
// result order.
func Diagnostics(results []Result) []*MissingGovernanceFieldError {
	var out []*MissingGovernanceFieldError
	for _, r := range results {
		switch r := r.(type) {
		case Compliant:
		case NonCompliant:
			for _, f := range r.Missing {
				out = append(out, &MissingGovernanceFieldError{Key: r.Key, Field: f})
			}
		default:
			panic(fmt.Sprintf("check: unexpected result type %T", r))
		}
	}
	return out
}
