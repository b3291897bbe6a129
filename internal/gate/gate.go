// Package gate runs the index check end to end: load, validate, resolve the
// change scope, check governance fields, report.
package gate

import (
	"context"
	"errors"
	"io"
	"log"
	"path"

	"aigov/internal/check"
	"aigov/internal/config"
	"aigov/internal/diff"
	"aigov/internal/index"
	"aigov/internal/report"
	"aigov/internal/scope"
	"aigov/internal/validate"
)

// CheckIndex runs every stage in order and stops at the first stage that
// fails. Each stage reports all of its findings before stopping. It returns
// report.ErrFailed after printing a failure, ctx.Err() on cancellation, and
// nil on success.
func CheckIndex(ctx context.Context, cfg config.Config, p scope.ChangedFilesProvider, rep *report.Reporter, logger *log.Logger) error {
	logger = orDiscard(logger)
	name := path.Base(cfg.Index.Path)

	doc, err := loadIndex(cfg, rep)
	if err != nil {
		return err
	}

	schema, err := validate.LoadSchema(cfg.Path(cfg.Index.Schema))
	if err != nil {
		var sle *validate.SchemaLoadError
		if errors.As(err, &sle) {
			rep.Fail("Cannot load "+cfg.Index.Schema+":", sle.Err.Error())
		} else {
			rep.Fail(err.Error())
		}
		return report.ErrFailed
	}
	if err := validate.Check(doc, schema); err != nil {
		var sie *validate.SchemaInvalidError
		if !errors.As(err, &sie) {
			rep.Fail(err.Error())
			return report.ErrFailed
		}
		items := make([]string, len(sie.Violations))
		for i, v := range sie.Violations {
			items[i] = v.String()
		}
		rep.Fail(name+" schema errors:", items...)
		return report.ErrFailed
	}

	for _, key := range scope.Unreachable(doc) {
		logger.Printf("package %q is never touched: keys name the first two path segments", key)
	}

	if cfg.Index.StrictOrder {
		opt := diff.Options{Context: 2, MaxBytes: cfg.Index.OrderDiffMaxBytes}
		if r := validate.KeyOrder(doc, opt); r != nil {
			rep.Fail(name + " packages are not sorted by key:")
			rep.Block(r.Patch)
			return report.ErrFailed
		}
	}

	touched, err := touchedPackages(ctx, doc, p, logger)
	if err != nil {
		return err
	}

	diags := check.Diagnostics(check.Evaluate(doc, touched))
	if len(diags) > 0 {
		items := make([]string, len(diags))
		for i, d := range diags {
			items[i] = d.Error()
		}
		rep.Fail("Missing required fields in "+name+":", items...)
		return report.ErrFailed
	}

	rep.OK("AI index validated.")
	return nil
}

// Touched loads the index and returns the packages touched by the current
// change without validating anything.
func Touched(ctx context.Context, cfg config.Config, p scope.ChangedFilesProvider, rep *report.Reporter, logger *log.Logger) ([]string, error) {
	doc, err := loadIndex(cfg, rep)
	if err != nil {
		return nil, err
	}
	return touchedPackages(ctx, doc, p, orDiscard(logger))
}

func loadIndex(cfg config.Config, rep *report.Reporter) (*index.Document, error) {
	doc, err := index.Load(cfg.Path(cfg.Index.Path))
	if err == nil {
		doc.Path = cfg.Index.Path
		return doc, nil
	}
	var missing *index.MissingIndexError
	var perr *index.ParseError
	switch {
	case errors.As(err, &missing):
		rep.Fail("Missing " + cfg.Index.Path)
	case errors.As(err, &perr):
		rep.Fail("Cannot parse "+cfg.Index.Path+":", perr.Err.Error())
	default:
		rep.Fail(err.Error())
	}
	return nil, report.ErrFailed
}

func touchedPackages(ctx context.Context, doc *index.Document, p scope.ChangedFilesProvider, logger *log.Logger) ([]string, error) {
	files, qerr := scope.ChangedOrEmpty(ctx, p)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if qerr != nil {
		logger.Printf("changed files unavailable, checking an empty change: %v", qerr)
	}
	touched := scope.Resolve(files, doc)
	logger.Printf("changed files: %d, touched packages: %v", len(files), touched)
	return touched, nil
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard, "", 0)
	}
	return l
}
