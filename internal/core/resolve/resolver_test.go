package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/cobalt/internal/core/model"
)

func TestOrder(t *testing.T) {
	pool := []model.MatchCandidate{
		cand("2", "11", model.MethodFuzzy, 0.90),
		cand("1", "10", model.MethodExactEmail, 1.0),
		cand("1", "12", model.MethodSubstring, 0.90),
		cand("1", "11", model.MethodSubstring, 0.90),
		cand("3", "13", model.MethodPattern, 0.75),
	}

	Order(pool)

	assert.Equal(t, []model.MatchCandidate{
		cand("1", "10", model.MethodExactEmail, 1.0),
		cand("1", "11", model.MethodSubstring, 0.90),
		cand("1", "12", model.MethodSubstring, 0.90),
		cand("2", "11", model.MethodFuzzy, 0.90),
		cand("3", "13", model.MethodPattern, 0.75),
	}, pool)
}

func TestAssignBestPerLeft(t *testing.T) {
	pool := []model.MatchCandidate{
		cand("1", "10", model.MethodSubstring, 0.95),
		cand("1", "11", model.MethodSubstring, 0.85),
		cand("2", "12", model.MethodPattern, 0.75),
	}

	winners := Assign(pool, ids("1", "2"), ids("10", "11", "12"))

	require.Len(t, winners, 2)
	assert.Equal(t, cand("1", "10", model.MethodSubstring, 0.95), winners[0])
	assert.Equal(t, cand("2", "12", model.MethodPattern, 0.75), winners[1])
}

func TestAssignOneToOne(t *testing.T) {
	// Both lefts prefer right 10 at equal confidence; left 1 wins the id
	// tie-break, and right 11 recovers left 2 in pass two.
	pool := []model.MatchCandidate{
		cand("1", "10", model.MethodSubstring, 0.95),
		cand("2", "10", model.MethodSubstring, 0.95),
		cand("2", "11", model.MethodFuzzy, 0.86),
	}

	winners := Assign(pool, ids("1", "2"), ids("10", "11"))

	require.Len(t, winners, 2)
	assert.Equal(t, cand("1", "10", model.MethodSubstring, 0.95), winners[0])
	assert.Equal(t, cand("2", "11", model.MethodFuzzy, 0.86), winners[1])

	seenLeft := make(map[string]bool)
	seenRight := make(map[string]bool)
	for _, w := range winners {
		assert.False(t, seenLeft[w.LeftID])
		assert.False(t, seenRight[w.RightID])
		seenLeft[w.LeftID] = true
		seenRight[w.RightID] = true
	}
}

func TestAssignJudgesEachLeftOnce(t *testing.T) {
	// Left 2's best candidate targets a taken right. It is not paired in
	// pass one, and pass two only recovers rights, so the weaker (2,11)
	// candidate still wins for right 11.
	pool := []model.MatchCandidate{
		cand("1", "10", model.MethodExactEmail, 1.0),
		cand("2", "10", model.MethodSubstring, 0.95),
		cand("2", "11", model.MethodPattern, 0.75),
	}

	winners := Assign(pool, ids("1", "2"), ids("10", "11"))

	require.Len(t, winners, 2)
	assert.Equal(t, cand("1", "10", model.MethodExactEmail, 1.0), winners[0])
	assert.Equal(t, cand("2", "11", model.MethodPattern, 0.75), winners[1])
}

func TestAssignDropsUnknownIDs(t *testing.T) {
	pool := []model.MatchCandidate{
		cand("1", "10", model.MethodExactEmail, 1.0),
		cand("99", "10", model.MethodExactEmail, 1.0),
		cand("1", "99", model.MethodSubstring, 0.95),
	}

	winners := Assign(pool, ids("1"), ids("10"))

	require.Len(t, winners, 1)
	assert.Equal(t, cand("1", "10", model.MethodExactEmail, 1.0), winners[0])
}

func TestAssignDeterministicTieBreak(t *testing.T) {
	// Equal confidence and tier: lower left id wins the shared right.
	pool := []model.MatchCandidate{
		cand("2", "10", model.MethodSubstring, 0.95),
		cand("1", "10", model.MethodSubstring, 0.95),
	}

	a := Assign(append([]model.MatchCandidate(nil), pool...), ids("1", "2"), ids("10"))
	b := Assign([]model.MatchCandidate{pool[1], pool[0]}, ids("1", "2"), ids("10"))

	require.Len(t, a, 1)
	assert.Equal(t, "1", a[0].LeftID)
	assert.Equal(t, a, b)
}

func TestAssignEmptyPool(t *testing.T) {
	assert.Empty(t, Assign(nil, ids("1"), ids("10")))
}

func cand(l, r string, m model.Method, conf float64) model.MatchCandidate {
	return model.MatchCandidate{
		LeftID:     l,
		RightID:    r,
		Method:     m,
		Confidence: conf,
		TierRank:   m.Tier(),
	}
}

func ids(vals ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		out[v] = struct{}{}
	}
	return out
}
