package scope

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBaseRef is compared against in CI when no base ref is configured.
const DefaultBaseRef = "origin/main"

// ChangedFilesProvider supplies the repository-relative paths of the current
// change.
type ChangedFilesProvider interface {
	ChangedFiles(ctx context.Context) ([]string, error)
}

// Static returns a fixed list of paths.
type Static []string

func (s Static) ChangedFiles(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

// GitBaseRef lists the paths that differ between the working tree and a base
// ref (git diff --name-only -z <base>). Used in CI.
type GitBaseRef struct {
	Dir  string // repository root; "" means the current directory
	Base string // "" means DefaultBaseRef
}

func (g GitBaseRef) ChangedFiles(ctx context.Context) ([]string, error) {
	base := g.Base
	if base == "" {
		base = DefaultBaseRef
	}
	return gitNames(ctx, g.Dir, "diff", "--name-only", "-z", base)
}

// GitStaged lists the paths staged for commit (git diff --cached --name-only -z).
// Used for local pre-commit runs.
type GitStaged struct {
	Dir string
}

func (g GitStaged) ChangedFiles(ctx context.Context) ([]string, error) {
	return gitNames(ctx, g.Dir, "diff", "--cached", "--name-only", "-z")
}

// ForEnvironment picks the CI provider when ci is set, the staged one
// otherwise.
func ForEnvironment(ci bool, dir, base string) ChangedFilesProvider {
	if ci {
		return GitBaseRef{Dir: dir, Base: base}
	}
	return GitStaged{Dir: dir}
}

// ChangedOrEmpty queries p and degrades to an empty change when the query
// fails, so checkouts without git history (or with an unknown base ref) are
// not blocked. The query error is returned alongside for logging only.
func ChangedOrEmpty(ctx context.Context, p ChangedFilesProvider) ([]string, error) {
	files, err := p.ChangedFiles(ctx)
	if err != nil {
		return []string{}, err
	}
	return files, nil
}

func gitNames(ctx context.Context, dir string, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
	}
	return splitNUL(string(out)), nil
}

// splitNUL splits -z output. Paths are verbatim there; without -z git
// C-quotes paths with non-ASCII bytes.
func splitNUL(s string) []string {
	var out []string
	for _, name := range strings.Split(s, "\x00") {
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
