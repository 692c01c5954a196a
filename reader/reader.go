// Package reader turns rfexproto source text into Value trees, resolving
// self-reference literals into genuine structure-sharing (and possibly
// cyclic) pairs, and recording a source location for every list it reads.
package reader

import (
	"math/big"
	"strconv"

	"github.com/GeeTransit/rfexproto/lexer"
	"github.com/GeeTransit/rfexproto/value"
)

// Reader parses a single source text into a sequence of top-level forms.
type Reader struct {
	lex      *lexer.Lexer
	filename string
	cur      lexer.Token

	// selfRefStack holds, innermost-last, one entry per spine cons cell
	// currently under construction (pushed before that cell's car is
	// parsed, popped after its cdr is). "#." refers to the top of the
	// stack, "#.." to one below it, and so on.
	selfRefStack []*value.Pair
}

// New creates a Reader over src. filename is attached to every recorded
// Location and to parse errors; it may be empty for ad-hoc input (e.g.
// REPL lines).
func New(src, filename string) (*Reader, error) {
	r := &Reader{lex: lexer.New(src), filename: filename}
	if err := r.advance(); err != nil {
		return nil, err
	}
	return r, nil
}

// AtEOF reports whether the reader has consumed every top-level form.
func (r *Reader) AtEOF() bool {
	return r.cur.Type == lexer.EOF
}

// ReadOne parses the next top-level form. ok is false once the input is
// exhausted (io.EOF-like, but reader errors are always returned as err,
// never as a sentinel value).
func (r *Reader) ReadOne() (v value.Value, ok bool, err error) {
	if r.AtEOF() {
		return nil, false, nil
	}
	expr, err := r.parseExpr()
	if err != nil {
		return nil, false, err
	}
	return deepCopyImmutable(expr), true, nil
}

// ReadAll parses every remaining top-level form (used by `load` and the
// batch-mode driver).
func (r *Reader) ReadAll() ([]value.Value, error) {
	var forms []value.Value
	for {
		v, ok, err := r.ReadOne()
		if err != nil {
			return nil, err
		}
		if !ok {
			return forms, nil
		}
		forms = append(forms, v)
	}
}

func (r *Reader) advance() error {
	tok, err := r.lex.NextToken()
	if err != nil {
		return r.wrapLexError(err)
	}
	r.cur = tok
	return nil
}

func (r *Reader) wrapLexError(err error) error {
	if se, ok := err.(*lexer.SyntaxError); ok {
		return &ParseError{File: r.filename, Line: se.Line, Column: se.Column, Msg: se.Msg, NeedsMoreInput: se.NeedsMoreInput}
	}
	return err
}

func (r *Reader) errorf(needsMore bool, msg string) error {
	return &ParseError{File: r.filename, Line: r.cur.Line, Column: r.cur.Column, Msg: msg, NeedsMoreInput: needsMore}
}

func (r *Reader) parseExpr() (value.Value, error) {
	tok := r.cur
	switch tok.Type {
	case lexer.LPAREN:
		if err := r.advance(); err != nil {
			return nil, err
		}
		return r.parseList(tok)
	case lexer.RPAREN:
		return nil, r.errorf(false, "unexpected ')'")
	case lexer.DOT:
		return nil, r.errorf(false, "unexpected '.'")
	case lexer.STRING:
		v := value.NewString(tok.Text)
		return v, r.advance()
	case lexer.NUMBER:
		v := parseNumber(tok.Text)
		return v, r.advance()
	case lexer.SYMBOL:
		v := value.Symbol(tok.Text)
		return v, r.advance()
	case lexer.HASH_TRUE:
		return value.True, r.advance()
	case lexer.HASH_FALSE:
		return value.False, r.advance()
	case lexer.HASH_INERT:
		return value.InertValue, r.advance()
	case lexer.HASH_IGNORE:
		return value.IgnoreValue, r.advance()
	case lexer.HASH_CHAR:
		v := value.Character(tok.Text[0])
		return v, r.advance()
	case lexer.HASH_SELFREF:
		return r.resolveSelfRef(tok)
	case lexer.EOF:
		return nil, r.errorf(true, "unexpected end of input")
	default:
		return nil, r.errorf(false, "illegal token "+tok.Text)
	}
}

func (r *Reader) resolveSelfRef(tok lexer.Token) (value.Value, error) {
	n := len(r.selfRefStack)
	idx := n - tok.Depth
	if idx < 0 {
		return nil, r.errorf(false, "self-reference depth exceeds enclosing list nesting")
	}
	head := r.selfRefStack[idx]
	if err := r.advance(); err != nil {
		return nil, err
	}
	return head, nil
}

// parseList parses the contents of a list after '(' has been consumed;
// openTok is the '(' token, used for the list's start/end location.
//
// Self-reference depth ("#.", "#..", ...) is counted in pushed stack
// frames, and a frame is pushed once per spine cons cell -- not once
// per syntactically nested list. So in "(a (#..))" the inner list's
// "#.." does not reach the outermost pair; it reaches the second spine
// cell of the outer list (the cell holding the inner list itself),
// producing a 2-cycle between that cell and the inner list's own pair.
// This mirrors how the original reader grows its cons stack once per
// call to its element-reading recursion, which recurses once per
// spine position, not once per "(".
func (r *Reader) parseList(openTok lexer.Token) (value.Value, error) {
	if r.cur.Type == lexer.RPAREN {
		if err := r.advance(); err != nil {
			return nil, err
		}
		return value.NilValue, nil
	}

	top, err := r.readElements(true)
	if err != nil {
		return nil, err
	}
	if r.cur.Type != lexer.RPAREN {
		return nil, r.errorf(r.cur.Type == lexer.EOF, "expected ')' to close list")
	}
	closeTok := r.cur
	if err := r.advance(); err != nil {
		return nil, err
	}
	if p, ok := top.(*value.Pair); ok {
		recordLocation(p, spanOf(r.filename, openTok, closeTok))
	}
	return top, nil
}

// readElements reads one spine cons cell of a list (or, when first is
// false, notices the list has ended or hit a dotted tail). It pushes
// the new cell onto selfRefStack before reading its car, so a
// self-reference appearing as that car (or anywhere within it) can
// resolve back to the cell currently under construction.
func (r *Reader) readElements(first bool) (value.Value, error) {
	if !first {
		switch r.cur.Type {
		case lexer.RPAREN:
			return value.NilValue, nil
		case lexer.DOT:
			if err := r.advance(); err != nil {
				return nil, err
			}
			return r.parseExpr()
		}
	}
	if r.cur.Type == lexer.EOF {
		return nil, r.errorf(true, "unterminated list")
	}

	top := &value.Pair{Mutable: true}
	r.selfRefStack = append(r.selfRefStack, top)
	car, err := r.parseExpr()
	if err != nil {
		r.selfRefStack = r.selfRefStack[:len(r.selfRefStack)-1]
		return nil, err
	}
	top.Car = car

	cdr, err := r.readElements(false)
	r.selfRefStack = r.selfRefStack[:len(r.selfRefStack)-1]
	if err != nil {
		return nil, err
	}
	top.Cdr = cdr
	return top, nil
}

func spanOf(file string, open, closeTok lexer.Token) Location {
	return Location{File: file, StartLine: open.Line, StartCol: open.Column, EndLine: closeTok.Line, EndCol: closeTok.Column}
}

func parseNumber(text string) value.Value {
	if i, ok := new(big.Int).SetString(text, 10); ok {
		return &value.Integer{V: i}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// looksNumeric accepts any mix of sign, digits and dots, so
		// text such as "1.2.3" reaches here without being a valid
		// number. Treat it as a symbol rather than panicking on
		// malformed input.
		return value.Symbol(text)
	}
	return value.Real(f)
}
