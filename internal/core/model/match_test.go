package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethodTier(t *testing.T) {
	assert.Equal(t, 0, MethodExactEmail.Tier())
	assert.Equal(t, 1, MethodSubstring.Tier())
	assert.Equal(t, 2, MethodPattern.Tier())
	assert.Equal(t, 3, MethodFuzzy.Tier())
	assert.Equal(t, 99, Method("BOGUS").Tier())
}

func TestLinkID(t *testing.T) {
	a := LinkID("1", "10")
	assert.Len(t, a, 20)
	assert.Equal(t, a, LinkID("1", "10"))
	assert.NotEqual(t, a, LinkID("10", "1"))
	// Concatenation is delimited, so shifted ids cannot collide.
	assert.NotEqual(t, LinkID("11", "0"), LinkID("1", "10"))
}

func TestUsable(t *testing.T) {
	assert.False(t, (&RawIdentitySignal{PrimaryID: "1"}).Usable())
	assert.True(t, (&RawIdentitySignal{DisplayName: "Jane"}).Usable())
	assert.True(t, (&RawIdentitySignal{Login: "jsmith"}).Usable())
	assert.True(t, (&RawIdentitySignal{Email: "j@x.com"}).Usable())
}
