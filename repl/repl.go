// Package repl drives one rfexproto session: the interactive "? "/"> "/
// "! " prompt loop, the equivalent batch-mode evaluation of a whole
// script, and the "! --- stack trace ---" printer a raised error walks
// through on its way to the terminal.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/reader"
	"github.com/GeeTransit/rfexproto/rferr"
	"github.com/GeeTransit/rfexproto/suggest"
	"github.com/GeeTransit/rfexproto/value"
	"github.com/GeeTransit/rfexproto/writer"
)

// Session owns one evaluator and the environment its top-level forms
// run in. One Session is reused across every form in a REPL run or a
// batch file, so definitions and keyed bindings persist the way a
// single process's standard environment does.
type Session struct {
	Driver      *eval.Driver
	Env         *value.Environment
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	Interactive bool
	Log         *slog.Logger

	exitCode int
}

// New creates a Session with Log set to slog.Default(). Session itself
// writes nothing to Log; prelude load failures are returned as errors
// and Lisp-level errors are printed to Stderr.
func New(d *eval.Driver, env *value.Environment, stdin io.Reader, stdout, stderr io.Writer, interactive bool) *Session {
	return &Session{
		Driver:      d,
		Env:         env,
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		Interactive: interactive,
		Log:         slog.Default(),
	}
}

// LoadPrelude loads path into Env before the session starts accepting
// forms, by evaluating (load path) through the already-wired `load`
// primitive. A missing file is not an error: a prelude is optional
// bootstrapping, not a required component.
func (s *Session) LoadPrelude(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return rferr.Wrap(rferr.KindLoad, "cannot stat prelude "+path, err)
	}
	expr := value.Cons(value.Symbol("load"), value.Cons(value.NewString(path), value.NilValue))
	if _, err := s.Driver.Eval(expr, s.Env); err != nil {
		return rferr.Wrap(rferr.KindLoad, "failed to load prelude "+path, err)
	}
	return nil
}

// Run drives the session to completion and returns the process exit
// code: 0 on success, 1 if a batch-mode form raised an uncaught error
// (interactive mode never exits non-zero on its own -- a REPL keeps
// going after an error).
func (s *Session) Run() int {
	br := bufio.NewReader(s.Stdin)
	if s.Interactive {
		fmt.Fprintln(s.Stdout, "? --- interactive repl ---")
		fmt.Fprintln(s.Stdout, "? results are prefixed with > and errors with !")
		fmt.Fprintln(s.Stdout, "? try typing (($vau (_ o) o) 1 2 3)")
	}

	var buf strings.Builder
	for {
		if s.Interactive {
			if buf.Len() == 0 {
				fmt.Fprint(s.Stdout, "? ")
			} else {
				fmt.Fprint(s.Stdout, "?.. ")
			}
		}
		line, readErr := br.ReadString('\n')
		buf.WriteString(line)
		atEOF := readErr != nil

		if buf.Len() > 0 {
			forms, perr := parseAll(buf.String())
			switch {
			case perr == nil:
				for _, expr := range forms {
					s.evalForm(expr)
				}
				buf.Reset()
			case needsMoreInput(perr) && !atEOF:
				// keep accumulating lines
			default:
				s.reportSyntaxError(perr)
				buf.Reset()
			}
		}

		if atEOF {
			break
		}
	}
	return s.exitCode
}

// stdinFilename is recorded against every form read interactively. The
// leading NUL marks it as not-a-real-path: the trace printer strips it
// for display but never tries to open it to show source context.
const stdinFilename = "\x00<stdin>"

func parseAll(src string) ([]value.Value, error) {
	r, err := reader.New(src, stdinFilename)
	if err != nil {
		return nil, err
	}
	return r.ReadAll()
}

func needsMoreInput(err error) bool {
	var pe *reader.ParseError
	if errors.As(err, &pe) {
		return pe.NeedsMoreInput
	}
	return false
}

func (s *Session) reportSyntaxError(err error) {
	fmt.Fprintf(s.Stderr, "! syntax-error %s\n", err.Error())
	if !s.Interactive {
		s.exitCode = 1
	}
}

func (s *Session) evalForm(expr value.Value) {
	v, err := s.Driver.Eval(expr, s.Env)
	if err != nil {
		var evErr *eval.Error
		if errors.As(err, &evErr) {
			fmt.Fprintln(s.Stderr, "! --- stack trace ---")
			if evErr.Source != nil {
				s.printTrace(evErr.Source)
			}
			s.printErrorMessage(evErr)
			s.Env.Define("last-error-message", evErr.Value)
			if !s.Interactive {
				s.exitCode = 1
			}
			return
		}
		fmt.Fprintf(s.Stderr, "! internal-error %v\n", err)
		s.exitCode = 1
		return
	}
	if s.Interactive {
		fmt.Fprint(s.Stdout, "> ")
		_ = writer.Write(s.Stdout, v)
		fmt.Fprintln(s.Stdout)
	}
	s.Env.Define("last-value", v)
}

func (s *Session) printErrorMessage(evErr *eval.Error) {
	full := value.Cons(value.Symbol("error"), evErr.Value)
	fmt.Fprint(s.Stderr, "! ")
	_ = writer.Write(s.Stderr, full)
	if hint := s.suggestionFor(evErr); hint != "" {
		fmt.Fprint(s.Stderr, " ", hint)
	}
	fmt.Fprintln(s.Stderr)
}

// suggestionFor appends a "did you mean ...?" hint to a binding-not-
// found error, computed from the names visible in Env -- never inside
// the evaluator itself, which has no notion of spelling.
func (s *Session) suggestionFor(evErr *eval.Error) string {
	p, ok := evErr.Value.(*value.Pair)
	if !ok {
		return ""
	}
	str, ok := p.Car.(*value.String)
	if !ok || str.String() != "binding not found" {
		return ""
	}
	items := value.ListToSlice(p.Cdr)
	if len(items) == 0 {
		return ""
	}
	sym, ok := items[0].(value.Symbol)
	if !ok {
		return ""
	}
	names := s.Env.VisibleNames()
	candidates := make([]string, len(names))
	for i, n := range names {
		candidates[i] = string(n)
	}
	close := suggest.Closest(string(sym), candidates, 3)
	if len(close) == 0 {
		return ""
	}
	return fmt.Sprintf("(did you mean %s?)", strings.Join(close, ", "))
}

const traceRightJust = 7

// printTrace renders the frames between source and the driver's Root,
// outermost first: one "in <file> at <line>" header per frame that
// recorded a CallExpr, followed by the source line with a "~~~"
// underline under single-line expressions.
func (s *Session) printTrace(source *value.Continuation) {
	var frames []*value.Continuation
	for c := source; c != nil && c != s.Driver.Root; c = c.Parent {
		frames = append(frames, c)
	}

	fileCache := map[string][]string{}
	for i := len(frames) - 1; i >= 0; i-- {
		c := frames[i]
		if c.CallExpr == nil {
			continue
		}
		p, ok := c.CallExpr.(*value.Pair)
		if !ok {
			fmt.Fprintln(s.Stderr, "  in unknown")
			fmt.Fprint(s.Stderr, strings.Repeat(" ", traceRightJust))
			_ = writer.Write(s.Stderr, c.CallExpr)
			fmt.Fprintln(s.Stderr)
			continue
		}
		loc, ok := reader.LocationOf(p)
		if !ok {
			fmt.Fprintln(s.Stderr, "  in unknown")
			fmt.Fprint(s.Stderr, strings.Repeat(" ", traceRightJust))
			_ = writer.Write(s.Stderr, c.CallExpr)
			fmt.Fprintln(s.Stderr)
			continue
		}

		displayFile := loc.File
		if strings.HasPrefix(displayFile, "\x00") {
			displayFile = displayFile[1:]
		}
		if loc.StartLine == loc.EndLine {
			fmt.Fprintf(s.Stderr, "  in %q at %d [%d:%d]\n", displayFile, loc.StartLine, loc.StartCol, loc.EndCol)
		} else {
			fmt.Fprintf(s.Stderr, "  in %q at %d:%d [%d:%d]\n", displayFile, loc.StartLine, loc.EndLine, loc.StartCol, loc.EndCol)
		}

		lines, cached := fileCache[loc.File]
		if !cached {
			lines = readSourceLines(loc.File)
			fileCache[loc.File] = lines
		}
		if lines == nil {
			fmt.Fprint(s.Stderr, strings.Repeat(" ", traceRightJust))
			_ = writer.Write(s.Stderr, c.CallExpr)
			fmt.Fprintln(s.Stderr)
			continue
		}

		if loc.StartLine == loc.EndLine && loc.StartLine-1 < len(lines) {
			printUnderlinedLine(s.Stderr, lines[loc.StartLine-1], loc.StartLine, loc.StartCol, loc.EndCol)
		}
	}
}

func readSourceLines(filename string) []string {
	if filename == "" || filename[0] == 0 {
		return nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil
	}
	return strings.Split(string(data), "\n")
}

func printUnderlinedLine(w io.Writer, line string, lineNo, startCol, endCol int) {
	prefix := fmt.Sprintf("%d|", lineNo)
	fmt.Fprint(w, rightJust(prefix, traceRightJust))
	fmt.Fprintln(w, line)
	fmt.Fprint(w, rightJust("", traceRightJust))
	before := startCol - 1
	if before < 0 {
		before = 0
	}
	after := endCol
	if after < before {
		after = before
	}
	fmt.Fprint(w, strings.Repeat(" ", before))
	fmt.Fprintln(w, strings.Repeat("~", after-before))
}

func rightJust(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
