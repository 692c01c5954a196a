// Package writer renders Values back to rfexproto source text, the
// inverse of package reader. Cyclic and shared structure is detected
// with a depth map and rendered with the same `#.` back-reference
// syntax the reader accepts.
package writer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/GeeTransit/rfexproto/value"
)

// String renders v to its written form.
func String(v value.Value) string {
	var sb strings.Builder
	Write(&sb, v) //nolint:errcheck // strings.Builder never errors
	return sb.String()
}

// Write renders v to w, following pair chains iteratively where
// possible (so long flat lists don't recurse one stack frame per
// element) and recursing only into car positions and dotted tails. A
// pair already on the path being written is rendered as a `#.`
// back-reference instead of being entered again.
func Write(w io.Writer, v value.Value) error {
	seen := make(map[*value.Pair]int)
	return writeAt(w, v, 0, seen)
}

func writeAt(w io.Writer, v value.Value, depth int, seen map[*value.Pair]int) error {
	switch x := v.(type) {
	case value.Nil:
		return writeString(w, "()")
	case value.Inert:
		return writeString(w, "#inert")
	case value.Ignore:
		return writeString(w, "#ignore")
	case value.Boolean:
		if x {
			return writeString(w, "#t")
		}
		return writeString(w, "#f")
	case *value.Integer:
		return writeString(w, x.V.String())
	case value.Real:
		return writeString(w, formatReal(float64(x)))
	case value.Character:
		return writeString(w, formatCharacter(byte(x)))
	case *value.String:
		return writeString(w, formatString(x.Bytes))
	case value.Symbol:
		return writeString(w, string(x))
	case *value.Pair:
		return writePair(w, x, depth, seen)
	default:
		return writeString(w, formatOpaque(v))
	}
}

func writePair(w io.Writer, p *value.Pair, depth int, seen map[*value.Pair]int) error {
	if startDepth, ok := seen[p]; ok {
		return writeString(w, "#"+strings.Repeat(".", depth-startDepth))
	}

	seen[p] = depth
	defer delete(seen, p)

	if err := writeString(w, "("); err != nil {
		return err
	}
	if err := writeAt(w, p.Car, depth+1, seen); err != nil {
		return err
	}
	depth++
	cur := p.Cdr
	for {
		next, ok := cur.(*value.Pair)
		if !ok {
			break
		}
		if backDepth, seenBefore := seen[next]; seenBefore {
			if err := writeString(w, " . "); err != nil {
				return err
			}
			if err := writeString(w, "#"+strings.Repeat(".", depth-backDepth)); err != nil {
				return err
			}
			return writeString(w, ")")
		}
		seen[next] = depth
		defer delete(seen, next)
		if err := writeString(w, " "); err != nil {
			return err
		}
		if err := writeAt(w, next.Car, depth+1, seen); err != nil {
			return err
		}
		depth++
		cur = next.Cdr
	}

	if _, isNil := cur.(value.Nil); !isNil {
		if err := writeString(w, " . "); err != nil {
			return err
		}
		if err := writeAt(w, cur, depth, seen); err != nil {
			return err
		}
	}
	return writeString(w, ")")
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// formatCharacter follows the reader's #\c syntax; the handful of bytes
// that would be ambiguous or invisible in source (space, parens, tab,
// newline, CR) get a \xHH spelling instead of a literal character.
func formatCharacter(b byte) string {
	switch b {
	case ' ':
		return `#\x20`
	case '(':
		return `#\x28`
	case ')':
		return `#\x29`
	case '\t':
		return `#\x09`
	case '\n':
		return `#\x0a`
	case '\r':
		return `#\x0d`
	}
	if b < 0x20 || b >= 0x7f {
		return fmt.Sprintf(`#\x%02x`, b)
	}
	return `#\` + string(b)
}

func formatString(bs []byte) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, b := range bs {
		switch b {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if b < 0x20 || b >= 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, b)
			} else {
				sb.WriteByte(b)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// formatOpaque renders the non-printable reference types (Environment,
// Continuation, Combiner, Encapsulation) opaquely, so no internal state
// leaks into the written form -- in particular never a map or pointer
// address, which would make two runs of the same program print
// different text.
func formatOpaque(v value.Value) string {
	switch v.(type) {
	case *value.Environment:
		return "#[environment]"
	case *value.Continuation:
		return "#[continuation]"
	case *value.Combiner:
		return "#[combiner]"
	case *value.Encapsulation:
		return "#[encapsulation]"
	default:
		return "#[opaque]"
	}
}
