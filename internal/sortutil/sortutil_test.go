package sortutil

import (
	"reflect"
	"testing"
)

func TestStablePathSortCopies(t *testing.T) {
	in := []string{"b/x", "a/y", "a/x"}
	out := StablePathSort(in)
	if want := []string{"a/x", "a/y", "b/x"}; !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v want %v", out, want)
	}
	if in[0] != "b/x" {
		t.Fatalf("input modified: %v", in)
	}
}

func TestKeys(t *testing.T) {
	m := map[string]int{"z": 1, "a": 2, "m": 3}
	if got := Keys(m); !reflect.DeepEqual(got, []string{"a", "m", "z"}) {
		t.Fatalf("got %v", got)
	}
	if got := Keys(map[string]struct{}{}); len(got) != 0 {
		t.Fatalf("empty map should give no keys, got %v", got)
	}
}
