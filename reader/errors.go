package reader

import "fmt"

// ParseError reports a reader-level problem with its source position.
// NeedsMoreInput is true exactly when the problem is an unmatched open
// bracket (or unterminated string/char/escape) at end of stream — the
// condition the REPL uses to extend a multi-line prompt instead of
// reporting a hard error.
type ParseError struct {
	File           string
	Line, Column   int
	Msg            string
	NeedsMoreInput bool
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Line, e.Column, e.Msg)
}
