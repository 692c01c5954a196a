package value_test

import (
	"testing"

	"github.com/GeeTransit/rfexproto/value"
	"github.com/stretchr/testify/assert"
)

func TestTokensAreDistinctIdentities(t *testing.T) {
	a := value.NewToken()
	b := value.NewToken()
	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.String(), b.String())
}

func TestTokenCollisionSmokeTest(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		id := value.NewToken().String()
		assert.False(t, seen[id], "token id collided at draw %d", i)
		seen[id] = true
	}
}
