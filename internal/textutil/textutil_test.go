package textutil

import "testing"

func TestNormalizeUTF8LF(t *testing.T) {
	got := string(NormalizeUTF8LF([]byte("a\r\nb\rc\xffd")))
	if got != "a\nb\nc\uFFFDd" {
		t.Fatalf("got %q", got)
	}
}

func TestWords(t *testing.T) {
	if n := Words([]byte("  one two\n\tthree  ")); n != 3 {
		t.Fatalf("got %d", n)
	}
	if n := Words(nil); n != 0 {
		t.Fatalf("got %d", n)
	}
}
