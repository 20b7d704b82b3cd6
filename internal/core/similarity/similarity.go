// Package similarity scores how likely two free-text identity fields refer
// to the same person. It combines two heuristics: Jaccard token overlap
// rewards exact shared words (handles "Last, First" vs "First Last"), while
// a token-set ratio rewards character-level overlap through typos and
// punctuation. Each misses a failure mode the other catches, so the scorer
// takes the max.
package similarity

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/agenthands/cobalt/internal/core/normalize"
)

// Jaccard returns |a∩b| / |a∪b|, or 0 when either set is empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// TokenSetRatio compares the sorted token sets of two cleaned strings the
// way fuzz.token_set_ratio does: score the common core against each side's
// core-plus-remainder and keep the best. Result is in [0,1].
func TokenSetRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	setA := fieldSet(a)
	setB := fieldSet(b)

	var common, onlyA, onlyB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	core := strings.Join(common, " ")
	full1 := strings.TrimSpace(core + " " + strings.Join(onlyA, " "))
	full2 := strings.TrimSpace(core + " " + strings.Join(onlyB, " "))

	best := ratio(full1, full2)
	if core != "" {
		if r := ratio(core, full1); r > best {
			best = r
		}
		if r := ratio(core, full2); r > best {
			best = r
		}
	}
	return best
}

// Combined is the scorer's single entry point:
// max(Jaccard over tokens, token-set ratio over cleaned text).
func Combined(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	jac := Jaccard(normalize.Tokens(a), normalize.Tokens(b))
	fuz := TokenSetRatio(normalize.CleanForFuzzy(a), normalize.CleanForFuzzy(b))
	if fuz > jac {
		return fuz
	}
	return jac
}

func ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

func fieldSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.Fields(s) {
		out[f] = struct{}{}
	}
	return out
}
