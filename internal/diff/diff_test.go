package diff

import (
	"strings"
	"testing"
)

func TestUnifiedProducesHunks(t *testing.T) {
	body, oversize := Unified("a.txt", "b.txt", []byte("line1\nline2\n"), []byte("line1\nline3\n"), Options{Context: 1})
	if oversize {
		t.Fatalf("unexpected oversize")
	}
	for _, want := range []string{"--- a.txt", "+++ b.txt", "@@", "-line2", "+line3"} {
		if !strings.Contains(body, want) {
			t.Fatalf("patch missing %q:\n%s", want, body)
		}
	}
}

func TestUnifiedIdenticalInputIsEmpty(t *testing.T) {
	body, _ := Unified("a", "b", []byte("same\n"), []byte("same\n"), Options{})
	if body != "" {
		t.Fatalf("expected empty patch, got %q", body)
	}
}

func TestUnifiedOversize(t *testing.T) {
	body, oversize := Unified("a", "b", []byte("12345"), []byte("67890"), Options{MaxBytes: 4})
	if !oversize {
		t.Fatalf("expected oversize")
	}
	if !strings.Contains(body, "diff omitted") {
		t.Fatalf("placeholder missing: %q", body)
	}
}
