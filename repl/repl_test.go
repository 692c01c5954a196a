package repl_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/GeeTransit/rfexproto/builtins"
	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/repl"
	"github.com/GeeTransit/rfexproto/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, stdin string) (*repl.Session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	d := eval.NewDriver()
	env := value.NewEnvironment(nil)
	builtins.Install(env, d)
	var stdout, stderr bytes.Buffer
	s := repl.New(d, env, strings.NewReader(stdin), &stdout, &stderr, false)
	return s, &stdout, &stderr
}

func TestBatchEvaluatesForms(t *testing.T) {
	s, stdout, stderr := newSession(t, "($define! x (+ 1 2))\n")
	code := s.Run()
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr.String())
	assert.Empty(t, stdout.String())
}

func TestBatchReportsErrorAndExitsNonZero(t *testing.T) {
	s, _, stderr := newSession(t, "undefined-name\n")
	code := s.Run()
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "binding not found")
}

func TestBatchSuggestsCloseBindingName(t *testing.T) {
	// "cr" is a subsequence of "car" (fuzzysearch matches fzf-style, not
	// by edit distance), so it should turn up as a suggestion.
	s, _, stderr := newSession(t, "cr\n")
	s.Run()
	assert.Contains(t, stderr.String(), "did you mean")
	assert.Contains(t, stderr.String(), "car")
}

func TestInteractivePrintsResultsAndPrompts(t *testing.T) {
	d := eval.NewDriver()
	env := value.NewEnvironment(nil)
	builtins.Install(env, d)
	var stdout, stderr bytes.Buffer
	s := repl.New(d, env, strings.NewReader("(+ 1 2)\n"), &stdout, &stderr, true)
	code := s.Run()
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "> 3")
}

func TestLoadPreludeMissingFileIsNotAnError(t *testing.T) {
	s, _, _ := newSession(t, "")
	err := s.LoadPrelude("/nonexistent/std.lisp")
	require.NoError(t, err)
}
