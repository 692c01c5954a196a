package reader_test

import (
	"testing"

	"github.com/GeeTransit/rfexproto/reader"
	"github.com/GeeTransit/rfexproto/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readOne(t *testing.T, src string) value.Value {
	t.Helper()
	r, err := reader.New(src, "test")
	require.NoError(t, err)
	v, ok, err := r.ReadOne()
	require.NoError(t, err)
	require.True(t, ok)
	return v
}

func TestReadAtoms(t *testing.T) {
	assert.Equal(t, value.Symbol("foo"), readOne(t, "foo"))
	assert.Equal(t, value.Symbol("foo"), readOne(t, "FOO"))
	assert.Equal(t, value.True, readOne(t, "#t"))
	assert.Equal(t, value.False, readOne(t, "#F"))
	assert.Equal(t, value.InertValue, readOne(t, "#inert"))
	assert.Equal(t, value.IgnoreValue, readOne(t, "#ignore"))
	assert.Equal(t, value.Character('x'), readOne(t, `#\x`))

	i := readOne(t, "42").(*value.Integer)
	assert.Equal(t, "42", i.V.String())

	neg := readOne(t, "-7").(*value.Integer)
	assert.Equal(t, "-7", neg.V.String())

	assert.Equal(t, value.Real(1.5), readOne(t, "1.5"))

	s := readOne(t, `"hi\n"`).(*value.String)
	assert.Equal(t, "hi\n", s.String())
}

func TestReadProperList(t *testing.T) {
	v := readOne(t, "(1 2 3)")
	assert.True(t, value.IsProperList(v))
	items := value.ListToSlice(v)
	require.Len(t, items, 3)
	assert.Equal(t, "1", items[0].(*value.Integer).V.String())
	assert.Equal(t, "3", items[2].(*value.Integer).V.String())
}

func TestReadDottedPair(t *testing.T) {
	v := readOne(t, "(1 . 2)").(*value.Pair)
	assert.Equal(t, "1", v.Car.(*value.Integer).V.String())
	assert.Equal(t, "2", v.Cdr.(*value.Integer).V.String())
}

func TestReadEmptyList(t *testing.T) {
	v := readOne(t, "()")
	assert.Equal(t, value.NilValue, v)
}

func TestReadNestedList(t *testing.T) {
	v := readOne(t, "(a (b c) d)")
	items := value.ListToSlice(v)
	require.Len(t, items, 3)
	inner := value.ListToSlice(items[1])
	require.Len(t, inner, 2)
	assert.Equal(t, value.Symbol("b"), inner[0])
}

func TestReadResultsAreImmutable(t *testing.T) {
	v := readOne(t, "(1 2)").(*value.Pair)
	assert.False(t, v.SetCar(value.NewInteger(9)))
}

// TestReadSelfReferenceSingletonCycle covers a list that is its own sole
// element: "(#.)" reads as a one-pair list whose car is itself.
func TestReadSelfReferenceSingletonCycle(t *testing.T) {
	v := readOne(t, "(#.)").(*value.Pair)
	assert.Same(t, v, v.Car.(*value.Pair))
	assert.Equal(t, value.NilValue, v.Cdr)

	// The cycle runs through the car, not the cdr chain Metrics follows,
	// so as a list it is a proper one-element list.
	m := value.Metrics(v)
	assert.Equal(t, 1, m.P)
	assert.Equal(t, 0, m.C)
	assert.Equal(t, 1, m.A)
	assert.True(t, m.N)
}

// TestReadSelfReferenceTrailingCycle covers "(a . #.)", a single pair
// whose cdr points back at itself -- a 1-cycle with no acyclic prefix.
func TestReadSelfReferenceTrailingCycle(t *testing.T) {
	v := readOne(t, "(a . #.)").(*value.Pair)
	assert.Equal(t, value.Symbol("a"), v.Car)
	assert.Same(t, v, v.Cdr.(*value.Pair))

	m := value.Metrics(v)
	assert.Equal(t, 1, m.P)
	assert.Equal(t, 1, m.C)
}

// TestReadSelfReferenceOuterList covers nested self-reference depth:
// self-reference depth counts spine cons cells, one per call to the
// element reader, not one per syntactic "(". In "(a (#..))" the
// second spine cell of the outer list (the one holding the inner list)
// and the inner list's own pair end up referring to each other, a
// 2-cycle.
func TestReadSelfReferenceOuterList(t *testing.T) {
	outer := readOne(t, "(a (#..))").(*value.Pair)
	elem2 := outer.Cdr.(*value.Pair)
	inner := elem2.Car.(*value.Pair)
	assert.Same(t, elem2, inner.Car.(*value.Pair))
	assert.Equal(t, value.NilValue, elem2.Cdr)
	assert.Equal(t, value.NilValue, inner.Cdr)
}

func TestReadSelfReferenceDepthTooDeepIsAnError(t *testing.T) {
	r, err := reader.New("(a . #..)", "test")
	require.NoError(t, err)
	_, _, err = r.ReadOne()
	assert.Error(t, err)
}

// TestReadMultipleTopLevelForms covers a REPL/load scenario: "(a #.)"
// builds a cyclic pair (the "#." names the spine cell it sits in, so the
// second cell of the list is its own car), and reading then carries on
// to the next top-level form.
func TestReadMultipleTopLevelForms(t *testing.T) {
	r, err := reader.New("(a #.)\n(1 2 3)", "test")
	require.NoError(t, err)
	forms, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, forms, 2)

	first := forms[0].(*value.Pair)
	second := first.Cdr.(*value.Pair)
	assert.Same(t, second, second.Car.(*value.Pair))

	second := value.ListToSlice(forms[1])
	require.Len(t, second, 3)
}

func TestUnterminatedListNeedsMoreInput(t *testing.T) {
	r, err := reader.New("(1 2", "test")
	require.NoError(t, err)
	_, _, err = r.ReadOne()
	require.Error(t, err)
	pe, ok := err.(*reader.ParseError)
	require.True(t, ok)
	assert.True(t, pe.NeedsMoreInput)
}

func TestUnexpectedCloseParenIsHardError(t *testing.T) {
	r, err := reader.New(")", "test")
	require.NoError(t, err)
	_, _, err = r.ReadOne()
	require.Error(t, err)
	pe, ok := err.(*reader.ParseError)
	require.True(t, ok)
	assert.False(t, pe.NeedsMoreInput)
}

func TestLocationRecordedForListHead(t *testing.T) {
	r, err := reader.New("(foo bar)", "test.lisp")
	require.NoError(t, err)
	v, ok, err := r.ReadOne()
	require.NoError(t, err)
	require.True(t, ok)

	p := v.(*value.Pair)
	loc, ok := reader.LocationOf(p)
	require.True(t, ok)
	assert.Equal(t, "test.lisp", loc.File)
	assert.Equal(t, 1, loc.StartLine)
	assert.Equal(t, 1, loc.StartCol)
}
