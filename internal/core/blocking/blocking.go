// Package blocking buckets signals by a cheap name signature so the fuzzy
// pass compares same-bucket pairs instead of the full cross product.
package blocking

import (
	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/core/normalize"
)

// Keys returns the block keys for a name: the first keyLen letters of the
// first word, plus the same prefix of the last word as a secondary key.
// A name with no letters has no keys and is never fuzzily compared.
func Keys(name string, keyLen int) []string {
	words := normalize.Words(name)
	if len(words) == 0 {
		return nil
	}
	keys := []string{prefix(words[0], keyLen)}
	if last := prefix(words[len(words)-1], keyLen); len(words) > 1 && last != keys[0] {
		keys = append(keys, last)
	}
	return keys
}

// Index maps block keys to the signals filed under them.
type Index struct {
	keyLen  int
	buckets map[string][]*model.NormalizedSignal
}

// NewIndex files each signal under the keys of its display name, falling
// back to its login when the name yields no key.
func NewIndex(keyLen int, signals []*model.NormalizedSignal) *Index {
	ix := &Index{keyLen: keyLen, buckets: make(map[string][]*model.NormalizedSignal)}
	for _, sig := range signals {
		keys := Keys(sig.Raw.DisplayName, keyLen)
		if len(keys) == 0 {
			keys = Keys(sig.Raw.Login, keyLen)
		}
		for _, k := range keys {
			ix.buckets[k] = append(ix.buckets[k], sig)
		}
	}
	return ix
}

// Candidates returns the signals sharing a block with the probe name, in
// insertion order, each at most once.
func (ix *Index) Candidates(name string) []*model.NormalizedSignal {
	keys := Keys(name, ix.keyLen)
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[*model.NormalizedSignal]struct{})
	var out []*model.NormalizedSignal
	for _, k := range keys {
		for _, sig := range ix.buckets[k] {
			if _, dup := seen[sig]; dup {
				continue
			}
			seen[sig] = struct{}{}
			out = append(out, sig)
		}
	}
	return out
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
