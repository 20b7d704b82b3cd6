// Package candidates proposes cross-system identity pairs. Four passes run
// in strict priority order — exact email, substring, name-derived pattern,
// blocked fuzzy — and every candidate they emit is kept for the resolver,
// including lower-tier candidates for ids a higher tier already covered:
// the resolver needs the full graph to fold aliases.
package candidates

import (
	"math"
	"sort"
	"strings"

	"github.com/agenthands/cobalt/internal/config"
	"github.com/agenthands/cobalt/internal/core/blocking"
	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/core/normalize"
	"github.com/agenthands/cobalt/internal/core/similarity"
)

type Generator struct {
	cfg config.MatchingConfig
}

func NewGenerator(cfg config.MatchingConfig) *Generator {
	return &Generator{cfg: cfg}
}

// Generate runs the four passes over the two pools. A pair consumed by an
// earlier pass is not re-proposed by a later one, but the ids themselves
// stay eligible: an id matched at tier one can still pick up lower-tier
// candidates against other signals, which is what lets the resolver fold
// aliases from the full graph.
func (g *Generator) Generate(left, right []*model.NormalizedSignal) []model.MatchCandidate {
	var pool []model.MatchCandidate
	seen := make(map[string]struct{})

	consume := func(batch []model.MatchCandidate) {
		for _, c := range batch {
			key := c.LeftID + "|" + c.RightID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pool = append(pool, c)
		}
	}

	consume(g.exactEmailPass(left, right))
	consume(g.substringPass(left, right))
	consume(g.patternPass(left, right))
	consume(g.fuzzyPass(left, right))

	return pool
}

// exactEmailPass joins the pools on normalized email, alias emails included.
// It runs unblocked: an email hash join is cheap and must not be hidden by a
// name mismatch.
func (g *Generator) exactEmailPass(left, right []*model.NormalizedSignal) []model.MatchCandidate {
	byEmail := make(map[string][]*model.NormalizedSignal)
	for _, r := range right {
		seen := make(map[string]struct{})
		for _, email := range append([]string{r.Email}, r.AliasEmails...) {
			if email == "" {
				continue
			}
			if _, dup := seen[email]; dup {
				continue
			}
			seen[email] = struct{}{}
			byEmail[email] = append(byEmail[email], r)
		}
	}

	var out []model.MatchCandidate
	for _, l := range left {
		if l.Email == "" {
			continue
		}
		for _, r := range byEmail[l.Email] {
			out = append(out, g.candidate(l, r, model.MethodExactEmail, 1.0))
		}
	}
	return out
}

// substringPass compares the alphanumeric-stripped left name against the
// stripped right name and the digit-stripped right login. Direction decides
// confidence: a login or name that extends the full left name is strong, the
// reverse is weaker, and a bare name token hitting the login sits between.
func (g *Generator) substringPass(left, right []*model.NormalizedSignal) []model.MatchCandidate {
	var out []model.MatchCandidate
	for _, l := range left {
		if l.AlnumName == "" {
			continue
		}
		tokens := sortedTokens(l.NameTokens)
		for _, r := range right {
			if conf, ok := g.substringScore(l.AlnumName, tokens, r); ok {
				out = append(out, g.candidate(l, r, model.MethodSubstring, conf))
			}
		}
	}
	return out
}

func (g *Generator) substringScore(lName string, lTokens []string, r *model.NormalizedSignal) (float64, bool) {
	best := 0.0
	score := func(conf float64) {
		if conf > best {
			best = conf
		}
	}

	if r.AlnumName != "" {
		switch {
		case strings.HasPrefix(r.AlnumName, lName):
			score(g.cfg.SubstringContains)
		case strings.HasPrefix(lName, r.AlnumName):
			score(g.cfg.SubstringContained)
		}
	}
	if r.BaseLogin != "" {
		switch {
		case strings.HasPrefix(r.BaseLogin, lName):
			score(g.cfg.SubstringContains)
		case strings.HasPrefix(lName, r.BaseLogin):
			score(g.cfg.SubstringLogin)
		}
	}

	// Token test catches logins built from a middle or last name alone.
	if best < g.cfg.TokenSubstring {
		for _, tok := range lTokens {
			if len(tok) < g.cfg.MinTokenLen {
				continue
			}
			if hasAffix(r.BaseLogin, tok) || hasAffix(r.AlnumName, tok) {
				score(g.cfg.TokenSubstring)
				break
			}
		}
	}

	return best, best >= g.cfg.AcceptFloor && best > 0
}

// patternPass derives plausible usernames from the left display name and
// tests each against the right login.
func (g *Generator) patternPass(left, right []*model.NormalizedSignal) []model.MatchCandidate {
	var out []model.MatchCandidate
	for _, l := range left {
		patterns := g.usernamePatterns(l.Raw.DisplayName)
		if len(patterns) == 0 {
			continue
		}
		for _, r := range right {
			login := strings.ToLower(r.Raw.Login)
			if login == "" {
				continue
			}
			for _, p := range patterns {
				if login == p || strings.HasPrefix(login, p) || strings.HasSuffix(login, p) {
					out = append(out, g.candidate(l, r, model.MethodPattern, g.cfg.Pattern))
					break
				}
			}
		}
	}
	return out
}

// usernamePatterns builds the candidate username set for a display name:
// first, last, first+last, last+first, initial+last, first+last-initial,
// initial+first, and initial+second when a middle name exists. Patterns at
// or below MinPatternLen-1 characters are dropped.
func (g *Generator) usernamePatterns(name string) []string {
	parts := normalize.NameParts(name)
	if len(parts) == 0 {
		return nil
	}

	var raw []string
	first := parts[0]
	raw = append(raw, first)
	if len(parts) > 1 {
		last := parts[len(parts)-1]
		raw = append(raw,
			last,
			first+last,
			last+first,
			first[:1]+last,
			first+last[:1],
			first[:1]+first,
		)
		if len(parts) > 2 {
			raw = append(raw, first[:1]+parts[1])
		}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, p := range raw {
		if len(p) < g.cfg.MinPatternLen {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// fuzzyPass is the only pass expensive enough to need blocking. It scores
// the left name against both the right display name and the right login and
// keeps the higher.
func (g *Generator) fuzzyPass(left, right []*model.NormalizedSignal) []model.MatchCandidate {
	index := blocking.NewIndex(g.cfg.BlockKeyLen, right)

	var out []model.MatchCandidate
	for _, l := range left {
		name := l.Raw.DisplayName
		if name == "" {
			continue
		}
		for _, r := range index.Candidates(name) {
			score := similarity.Combined(name, r.Raw.DisplayName)
			if s := similarity.Combined(name, r.Raw.Login); s > score {
				score = s
			}
			if score < g.cfg.FuzzyFloor {
				continue
			}
			out = append(out, g.candidate(l, r, model.MethodFuzzy, round2(score)))
		}
	}
	return out
}

func (g *Generator) candidate(l, r *model.NormalizedSignal, method model.Method, conf float64) model.MatchCandidate {
	return model.MatchCandidate{
		LeftID:     l.Raw.PrimaryID,
		RightID:    r.Raw.PrimaryID,
		Method:     method,
		Confidence: conf,
		TierRank:   method.Tier(),
	}
}

func sortedTokens(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

func hasAffix(s, tok string) bool {
	return s != "" && (strings.HasPrefix(s, tok) || strings.HasSuffix(s, tok))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
