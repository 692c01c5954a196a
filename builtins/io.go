package builtins

import (
	"os"

	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/value"
	"golang.org/x/text/encoding/charmap"
)

// installIO registers the minimal character/string primitives: basic
// read-char/write-char (no terminal-mode adapters), list/string
// conversions, and symbol/string conversions.
func installIO(env *value.Environment, d *eval.Driver) {
	define(env, "read-char", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		var buf [1]byte
		n, err := os.Stdin.Read(buf[:])
		if n == 0 || err != nil {
			return d.RaiseError(k, "end of file reached", nil)
		}
		return value.ReturnStep(value.Character(buf[0]), k)
	})

	define(env, "write-char", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "write-char requires one character argument", []value.Value{operand})
		}
		ch, ok := v.(value.Character)
		if !ok {
			return d.RaiseError(k, "write-char argument must be a character", []value.Value{v})
		}
		os.Stdout.Write([]byte{byte(ch)})
		return value.ReturnStep(value.InertValue, k)
	})

	define(env, "list->string", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "list->string requires one argument", []value.Value{operand})
		}
		m := value.Metrics(v)
		if !m.N || m.C > 0 {
			return d.RaiseError(k, "list->string argument must be finite list", []value.Value{v})
		}
		items := value.ListToSlice(v)
		bs := make([]byte, len(items))
		for i, item := range items {
			ch, ok := item.(value.Character)
			if !ok {
				return d.RaiseError(k, "list->string argument must be a list of characters", []value.Value{item})
			}
			bs[i] = byte(ch)
		}
		return value.ReturnStep(&value.String{Bytes: bs}, k)
	})

	define(env, "string->list", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "string->list requires one argument", []value.Value{operand})
		}
		s, ok := v.(*value.String)
		if !ok {
			return d.RaiseError(k, "string->list argument must be a string", []value.Value{v})
		}
		items := make([]value.Value, len(s.Bytes))
		for i, b := range s.Bytes {
			items[i] = value.Character(b)
		}
		return value.ReturnStep(value.SliceToList(items), k)
	})

	define(env, "symbol->string", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "symbol->string requires one argument", []value.Value{operand})
		}
		sym, ok := v.(value.Symbol)
		if !ok {
			return d.RaiseError(k, "symbol->string argument must be a symbol", []value.Value{v})
		}
		bs, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(sym))
		if err != nil {
			return d.RaiseError(k, "symbol contains a character outside Latin-1", []value.Value{v})
		}
		return value.ReturnStep(&value.String{Bytes: bs}, k)
	})

	define(env, "string->symbol", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "string->symbol requires one argument", []value.Value{operand})
		}
		s, ok := v.(*value.String)
		if !ok {
			return d.RaiseError(k, "string->symbol argument must be a string", []value.Value{v})
		}
		bs, err := charmap.ISO8859_1.NewDecoder().Bytes(s.Bytes)
		if err != nil {
			return d.RaiseError(k, "string is not valid Latin-1", []value.Value{v})
		}
		return value.ReturnStep(value.Symbol(bs), k)
	})
}
