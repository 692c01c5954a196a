package value_test

import (
	"testing"

	"github.com/GeeTransit/rfexproto/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func properList(items ...value.Value) value.Value {
	return value.SliceToList(items)
}

func TestMetricsEmptyList(t *testing.T) {
	m := value.Metrics(value.NilValue)
	assert.Equal(t, value.ListMetrics{P: 0, N: true, A: 0, C: 0}, m)
}

func TestMetricsProperList(t *testing.T) {
	l := properList(value.NewInteger(1), value.NewInteger(2), value.NewInteger(3))
	m := value.Metrics(l)
	assert.Equal(t, value.ListMetrics{P: 3, N: true, A: 3, C: 0}, m)
	assert.True(t, value.IsProperList(l))
}

func TestMetricsImproperList(t *testing.T) {
	// (1 . 2)
	p := value.Cons(value.NewInteger(1), value.NewInteger(2))
	m := value.Metrics(p)
	assert.Equal(t, 1, m.P)
	assert.False(t, m.N)
	assert.Equal(t, 0, m.C)
	assert.False(t, value.IsProperList(p))
}

func TestMetricsSelfCycle(t *testing.T) {
	p := value.Cons(value.NewInteger(1), nil)
	p.Cdr = p
	m := value.Metrics(p)
	assert.Equal(t, value.ListMetrics{P: 1, N: false, A: 0, C: 1}, m)
}

func TestMetricsPrefixPlusCycle(t *testing.T) {
	// p0 -> p1 -> p2 -> p1 (cycle of length 2, prefix length 1)
	p2 := value.Cons(value.NewInteger(2), nil)
	p1 := value.Cons(value.NewInteger(1), p2)
	p0 := value.Cons(value.NewInteger(0), p1)
	p2.Cdr = p1
	m := value.Metrics(p0)
	assert.Equal(t, value.ListMetrics{P: 3, N: false, A: 1, C: 2}, m)
	assert.Equal(t, m.P, m.A+m.C)
}

func TestSetCarFailsOnImmutablePair(t *testing.T) {
	p := value.NewPair(value.NewInteger(1), value.NilValue, false)
	assert.False(t, p.SetCar(value.NewInteger(2)))
}

func TestSetCarSucceedsOnMutablePair(t *testing.T) {
	p := value.Cons(value.NewInteger(1), value.NilValue)
	require.True(t, p.SetCar(value.NewInteger(9)))
	assert.Equal(t, value.NewInteger(9), p.Car)
}

func TestListToSliceRoundTrip(t *testing.T) {
	items := []value.Value{value.NewInteger(1), value.NewInteger(2), value.NewInteger(3)}
	l := value.SliceToList(items)
	assert.Equal(t, items, value.ListToSlice(l))
}
