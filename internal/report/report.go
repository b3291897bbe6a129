// Package report prints check outcomes: itemized failures on stderr, a one
// line confirmation on stdout.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const (
	failMark = "❌"
	okMark   = "✅"
)

// ErrFailed is returned by checks whose failure has already been printed.
// Callers map it to a non-zero exit without printing anything else.
var ErrFailed = errors.New("check failed")

// Reporter writes check results. The zero value is not usable; use New.
type Reporter struct {
	out, err io.Writer
	fail     *color.Color
	ok       *color.Color
	failed   bool
}

// New returns a reporter writing success to out and failures to errw.
func New(out, errw io.Writer, colorize bool) *Reporter {
	r := &Reporter{
		out:  out,
		err:  errw,
		fail: color.New(color.FgRed, color.Bold),
		ok:   color.New(color.FgGreen),
	}
	if colorize {
		r.fail.EnableColor()
		r.ok.EnableColor()
	} else {
		r.fail.DisableColor()
		r.ok.DisableColor()
	}
	return r
}

// Fail prints "❌ title" followed by one "  - item" line per item.
func (r *Reporter) Fail(title string, items ...string) {
	r.failed = true
	fmt.Fprintln(r.err, r.fail.Sprint(failMark+" "+title))
	for _, it := range items {
		fmt.Fprintln(r.err, "  - "+it)
	}
}

// Block prints a multi-line body (a patch, a dump) under the last failure,
// indented by four spaces.
func (r *Reporter) Block(body string) {
	body = strings.TrimRight(body, "\n")
	if body == "" {
		return
	}
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintln(r.err, "    "+line)
	}
}

// OK prints "✅ msg".
func (r *Reporter) OK(msg string) {
	fmt.Fprintln(r.out, r.ok.Sprint(okMark+" "+msg))
}

// Failed reports whether Fail was called.
func (r *Reporter) Failed() bool { return r.failed }

// ColorEnabled resolves a --color mode (auto|on|off) for f. auto colors only
// terminals and honors NO_COLOR.
func ColorEnabled(mode string, f *os.File) (bool, error) {
	switch strings.ToLower(mode) {
	case "", "auto":
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false, nil
		}
		return f != nil && term.IsTerminal(int(f.Fd())), nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	}
	return false, fmt.Errorf("invalid color mode %q (want auto|on|off)", mode)
}
