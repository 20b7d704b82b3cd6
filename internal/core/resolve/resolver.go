// Package resolve turns the raw candidate pool into the final near-1:1
// assignment and folds losing candidates into the winners' alias sets.
package resolve

import (
	"log"
	"sort"

	"github.com/agenthands/cobalt/internal/core/model"
)

// Order sorts candidates by confidence descending, then tier ascending, then
// left and right ids ascending. Confidence is the real key; tier only breaks
// exact ties (an exact-email hit beats a fuzzy 1.0), and the id ordering
// makes reruns reproduce the same assignment regardless of pool order.
func Order(pool []model.MatchCandidate) {
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.TierRank != b.TierRank {
			return a.TierRank < b.TierRank
		}
		if a.LeftID != b.LeftID {
			return a.LeftID < b.LeftID
		}
		return a.RightID < b.RightID
	})
}

// Assign greedily selects the primary pairing. Pass one keeps each left id's
// single best candidate; pass two recovers right ids whose best match was
// taken by a stronger pairing elsewhere, as long as an unused left remains
// for them. Candidates naming ids absent from either pool are dropped.
func Assign(pool []model.MatchCandidate, leftIDs, rightIDs map[string]struct{}) []model.MatchCandidate {
	valid := pool[:0:0]
	for _, c := range pool {
		_, lok := leftIDs[c.LeftID]
		_, rok := rightIDs[c.RightID]
		if !lok || !rok {
			log.Printf("Warning: dropping candidate %s/%s referencing unknown signal", c.LeftID, c.RightID)
			continue
		}
		valid = append(valid, c)
	}

	Order(valid)

	seenLeft := make(map[string]struct{})
	primaryLeft := make(map[string]struct{})
	primaryRight := make(map[string]struct{})
	var winners []model.MatchCandidate

	// Best per left: each left id is judged once, on its top candidate. A
	// left whose top candidate's right was already taken gets nothing here.
	for _, c := range valid {
		if _, ok := seenLeft[c.LeftID]; ok {
			continue
		}
		seenLeft[c.LeftID] = struct{}{}
		if _, ok := primaryRight[c.RightID]; ok {
			continue
		}
		primaryLeft[c.LeftID] = struct{}{}
		primaryRight[c.RightID] = struct{}{}
		winners = append(winners, c)
	}

	// Best per remaining right: recovers rights stolen in pass one, pairing
	// them with their best candidate whose left is still free. A right whose
	// every candidate touches a used left is left to alias folding.
	for _, c := range valid {
		if _, ok := primaryRight[c.RightID]; ok {
			continue
		}
		if _, ok := primaryLeft[c.LeftID]; ok {
			continue
		}
		primaryLeft[c.LeftID] = struct{}{}
		primaryRight[c.RightID] = struct{}{}
		winners = append(winners, c)
	}

	Order(winners)
	return winners
}
