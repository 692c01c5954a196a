package value_test

import (
	"testing"

	"github.com/GeeTransit/rfexproto/value"
	"github.com/stretchr/testify/assert"
)

func TestEnvironmentLookupWalksParents(t *testing.T) {
	root := value.NewEnvironment(nil)
	root.Define("x", value.NewInteger(1))
	child := value.NewEnvironment(root)

	v, ok := child.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, value.NewInteger(1), v)
}

func TestEnvironmentDefineShadowsWithoutMutatingParent(t *testing.T) {
	root := value.NewEnvironment(nil)
	root.Define("x", value.NewInteger(1))
	child := value.NewEnvironment(root)
	child.Define("x", value.NewInteger(2))

	childVal, _ := child.Lookup("x")
	rootVal, _ := root.Lookup("x")
	assert.Equal(t, value.NewInteger(2), childVal)
	assert.Equal(t, value.NewInteger(1), rootVal)
}

func TestEnvironmentLookupMissing(t *testing.T) {
	root := value.NewEnvironment(nil)
	_, ok := root.Lookup("missing")
	assert.False(t, ok)
}

func TestEnvironmentUpdateRewritesNearestFrame(t *testing.T) {
	root := value.NewEnvironment(nil)
	root.Define("x", value.NewInteger(1))
	child := value.NewEnvironment(root)

	assert.True(t, child.Update("x", value.NewInteger(9)))
	v, _ := root.Lookup("x")
	assert.Equal(t, value.NewInteger(9), v)
}

func TestEnvironmentUpdateMissingFails(t *testing.T) {
	root := value.NewEnvironment(nil)
	assert.False(t, root.Update("nope", value.NewInteger(1)))
}

func TestSiblingFramesShareParentWithoutInterference(t *testing.T) {
	root := value.NewEnvironment(nil)
	root.Define("shared", value.NewInteger(1))
	a := value.NewEnvironment(root)
	b := value.NewEnvironment(root)
	a.Define("only-a", value.NewInteger(2))

	_, ok := b.Lookup("only-a")
	assert.False(t, ok)
	v, ok := b.Lookup("shared")
	assert.True(t, ok)
	assert.Equal(t, value.NewInteger(1), v)
}

func TestStaticBindingLookupIsPerFrame(t *testing.T) {
	tok := value.NewToken()
	root := value.NewEnvironment(nil)
	bound := value.NewEnvironment(root)
	bound.SetStatic(tok, value.NewInteger(42))

	_, ok := root.LookupStaticLocal(tok)
	assert.False(t, ok)
	v, ok := bound.LookupStaticLocal(tok)
	assert.True(t, ok)
	assert.Equal(t, value.NewInteger(42), v)
}
