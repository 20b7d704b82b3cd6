package resolve

import (
	"sort"

	"github.com/agenthands/cobalt/internal/core/model"
)

// Consolidate builds the final links from the winning assignment, folding
// every losing candidate that touches a winner into that winner's alias
// sets. Links are visited in final order, and an id can be folded into only
// the first link that touches it, so each signal ends up in exactly one of
// {primary, alias, unmatched}.
func Consolidate(winners, pool []model.MatchCandidate, left, right map[string]*model.RawIdentitySignal) []model.ResolvedLink {
	claimed := make(map[string]struct{}, 2*len(winners))
	for _, w := range winners {
		claimed[sideKey(model.SystemLeft, w.LeftID)] = struct{}{}
		claimed[sideKey(model.SystemRight, w.RightID)] = struct{}{}
	}

	links := make([]model.ResolvedLink, 0, len(winners))
	for _, w := range winners {
		l := left[w.LeftID]
		r := right[w.RightID]

		link := model.ResolvedLink{
			LinkID:           model.LinkID(w.LeftID, w.RightID),
			LeftID:           w.LeftID,
			RightID:          w.RightID,
			LeftDisplayName:  l.DisplayName,
			LeftEmail:        l.Email,
			RightDisplayName: r.DisplayName,
			RightEmail:       r.Email,
			RightLogin:       r.Login,
			Method:           w.Method,
			Confidence:       w.Confidence,
		}

		names := newValueSet(l.DisplayName, r.DisplayName)
		emails := newValueSet(l.Email, r.Email)
		logins := newValueSet(r.Login)

		// Pre-merge aliases the winning signals already carried.
		names.add(l.AliasDisplayNames...)
		names.add(r.AliasDisplayNames...)
		emails.add(l.AliasEmails...)
		emails.add(r.AliasEmails...)
		logins.add(r.AliasLogins...)

		for _, c := range pool {
			if c.LeftID == w.LeftID && c.RightID != w.RightID {
				key := sideKey(model.SystemRight, c.RightID)
				if _, taken := claimed[key]; taken {
					continue
				}
				claimed[key] = struct{}{}
				link.AliasRightIDs = append(link.AliasRightIDs, c.RightID)
				foldValues(right[c.RightID], names, emails, logins)
			} else if c.RightID == w.RightID && c.LeftID != w.LeftID {
				key := sideKey(model.SystemLeft, c.LeftID)
				if _, taken := claimed[key]; taken {
					continue
				}
				claimed[key] = struct{}{}
				link.AliasLeftIDs = append(link.AliasLeftIDs, c.LeftID)
				foldValues(left[c.LeftID], names, emails, logins)
			}
		}

		sort.Strings(link.AliasLeftIDs)
		sort.Strings(link.AliasRightIDs)
		link.AliasDisplayNames = names.values()
		link.AliasEmails = emails.values()
		link.AliasLogins = logins.values()

		links = append(links, link)
	}
	return links
}

// Claimed reports every id consumed by the links, primaries and aliases
// both. Whatever is absent belongs in an unmatched pool.
func Claimed(links []model.ResolvedLink) map[string]struct{} {
	out := make(map[string]struct{})
	for _, link := range links {
		out[sideKey(model.SystemLeft, link.LeftID)] = struct{}{}
		out[sideKey(model.SystemRight, link.RightID)] = struct{}{}
		for _, id := range link.AliasLeftIDs {
			out[sideKey(model.SystemLeft, id)] = struct{}{}
		}
		for _, id := range link.AliasRightIDs {
			out[sideKey(model.SystemRight, id)] = struct{}{}
		}
	}
	return out
}

// InPool reports whether the system/id pair was claimed.
func InPool(claimed map[string]struct{}, system model.System, id string) bool {
	_, ok := claimed[sideKey(system, id)]
	return ok
}

func foldValues(sig *model.RawIdentitySignal, names, emails, logins *valueSet) {
	if sig == nil {
		return
	}
	names.add(sig.DisplayName)
	names.add(sig.AliasDisplayNames...)
	emails.add(sig.Email)
	emails.add(sig.AliasEmails...)
	logins.add(sig.Login)
	logins.add(sig.AliasLogins...)
}

func sideKey(system model.System, id string) string {
	return string(system) + ":" + id
}

// valueSet accumulates alias values, excluding empties and the canonical
// values it was seeded with.
type valueSet struct {
	exclude map[string]struct{}
	seen    map[string]struct{}
}

func newValueSet(canonical ...string) *valueSet {
	ex := make(map[string]struct{}, len(canonical))
	for _, v := range canonical {
		if v != "" {
			ex[v] = struct{}{}
		}
	}
	return &valueSet{exclude: ex, seen: make(map[string]struct{})}
}

func (vs *valueSet) add(values ...string) {
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := vs.exclude[v]; ok {
			continue
		}
		vs.seen[v] = struct{}{}
	}
}

func (vs *valueSet) values() []string {
	if len(vs.seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(vs.seen))
	for v := range vs.seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
