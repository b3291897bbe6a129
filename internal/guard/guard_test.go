package guard

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aigov/internal/report"
)

var forbidden = []string{".ai/working-state.json", ".ai/out/packet.md"}

func touch(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newReporter() (*report.Reporter, *bytes.Buffer, *bytes.Buffer) {
	var out, errb bytes.Buffer
	return report.New(&out, &errb, false), &out, &errb
}

func TestForbidNothingPresent(t *testing.T) {
	rep, out, errb := newReporter()
	if err := RunForbid(t.TempDir(), forbidden, rep); err != nil {
		t.Fatalf("RunForbid: %v", err)
	}
	if out.Len() != 0 || errb.Len() != 0 {
		t.Fatalf("success must be silent, got %q / %q", out.String(), errb.String())
	}
}

func TestForbidOnePresent(t *testing.T) {
	root := t.TempDir()
	touch(t, root, ".ai/working-state.json", "{}")
	rep, _, errb := newReporter()
	err := RunForbid(root, forbidden, rep)
	if !errors.Is(err, report.ErrFailed) {
		t.Fatalf("want ErrFailed, got %v", err)
	}
	want := "❌ Do not commit task-local or packet outputs:\n  - .ai/working-state.json\n"
	if errb.String() != want {
		t.Fatalf("stderr=%q want %q", errb.String(), want)
	}
}

func TestForbiddenKeepsOrder(t *testing.T) {
	root := t.TempDir()
	touch(t, root, ".ai/out/packet.md", "x")
	touch(t, root, ".ai/working-state.json", "{}")
	found, err := Forbidden(root, forbidden)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(found, ",") != ".ai/working-state.json,.ai/out/packet.md" {
		t.Fatalf("found=%v", found)
	}
}

func chunks(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "--- CHUNK %d ---\nbody\n", i)
	}
	return b.String()
}

var defaultBudget = Budget{MaxChunks: 15, MaxTokens: 8000}

func TestMeasurePacket(t *testing.T) {
	p := MeasurePacket([]byte("--- CHUNK 1 ---\r\nalpha beta\r\n--- CHUNK 2 ---\n"))
	if p.Chunks != 2 {
		t.Fatalf("chunks=%d", p.Chunks)
	}
	// 10 words × 1.3 = 13
	if p.Tokens != 13 {
		t.Fatalf("tokens=%d", p.Tokens)
	}
	// 3 words × 1.3 = 3.9 → 4
	if got := MeasurePacket([]byte("a b c")).Tokens; got != 4 {
		t.Fatalf("tokens=%d", got)
	}
}

func TestBudgetTooManyChunks(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "packet.md", chunks(16))
	rep, out, errb := newReporter()
	err := RunBudget(filepath.Join(root, "packet.md"), defaultBudget, rep)
	if !errors.Is(err, report.ErrFailed) {
		t.Fatalf("want ErrFailed, got %v", err)
	}
	if errb.String() != "❌ Packet has 16 chunks (max 15).\n" {
		t.Fatalf("stderr=%q", errb.String())
	}
	if out.Len() != 0 {
		t.Fatalf("stdout=%q", out.String())
	}
}

func TestBudgetWithinLimits(t *testing.T) {
	root := t.TempDir()
	body := chunks(10) + strings.Repeat("word ", 500)
	touch(t, root, "packet.md", body)
	rep, out, errb := newReporter()
	if err := RunBudget(filepath.Join(root, "packet.md"), defaultBudget, rep); err != nil {
		t.Fatalf("RunBudget: %v (stderr %q)", err, errb.String())
	}
	if out.String() != "✅ Packet budget OK.\n" {
		t.Fatalf("stdout=%q", out.String())
	}
}

func TestBudgetTooManyTokens(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "packet.md", strings.Repeat("w ", 6200))
	rep, _, errb := newReporter()
	if err := RunBudget(filepath.Join(root, "packet.md"), defaultBudget, rep); !errors.Is(err, report.ErrFailed) {
		t.Fatalf("want ErrFailed, got %v", err)
	}
	if errb.String() != "❌ Packet ~8060 tokens (max ~8000).\n" {
		t.Fatalf("stderr=%q", errb.String())
	}
}

func TestBudgetMissingPacket(t *testing.T) {
	rep, out, errb := newReporter()
	if err := RunBudget(filepath.Join(t.TempDir(), "none.md"), defaultBudget, rep); err != nil {
		t.Fatalf("RunBudget: %v", err)
	}
	if out.Len() != 0 || errb.Len() != 0 {
		t.Fatalf("missing packet must be a silent no-op")
	}
}
