// Package guard holds the two stand-alone repository guards: forbidden
// working-state files and the context packet budget.
package guard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"aigov/internal/report"
)

// Forbidden returns the entries of paths that exist under root, in the given
// order. Errors other than not-exist are returned.
func Forbidden(root string, paths []string) ([]string, error) {
	var found []string
	for _, p := range paths {
		full := p
		if !filepath.IsAbs(p) {
			full = filepath.Join(root, filepath.FromSlash(p))
		}
		_, err := os.Lstat(full)
		switch {
		case err == nil:
			found = append(found, p)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return found, fmt.Errorf("stat %s: %w", p, err)
		}
	}
	return found, nil
}

// RunForbid fails when any forbidden path exists. Success is silent.
func RunForbid(root string, paths []string, rep *report.Reporter) error {
	found, err := Forbidden(root, paths)
	if err != nil {
		rep.Fail(err.Error())
		return report.ErrFailed
	}
	if len(found) > 0 {
		rep.Fail("Do not commit task-local or packet outputs:", found...)
		return report.ErrFailed
	}
	return nil
}
