package model

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Method names the matching pass that produced a candidate.
type Method string

const (
	MethodExactEmail Method = "EXACT_EMAIL"
	MethodSubstring  Method = "SUBSTRING"
	MethodPattern    Method = "PATTERN"
	MethodFuzzy      Method = "FUZZY"
)

// Tier is the method's priority rank. Lower wins when confidences tie.
func (m Method) Tier() int {
	switch m {
	case MethodExactEmail:
		return 0
	case MethodSubstring:
		return 1
	case MethodPattern:
		return 2
	case MethodFuzzy:
		return 3
	}
	return 99
}

// MatchCandidate is a proposed cross-system pair. Candidates below the
// acceptance floor are never constructed.
type MatchCandidate struct {
	LeftID     string  `json:"left_id"`
	RightID    string  `json:"right_id"`
	Method     Method  `json:"method"`
	Confidence float64 `json:"confidence"`
	TierRank   int     `json:"tier_rank"`
}

// ResolvedLink is the engine's final belief that one person owns the left
// and right ids plus every folded alias.
type ResolvedLink struct {
	LinkID  string `json:"link_id"`
	LeftID  string `json:"left_id"`
	RightID string `json:"right_id"`

	LeftDisplayName  string `json:"left_display_name,omitempty"`
	LeftEmail        string `json:"left_email,omitempty"`
	RightDisplayName string `json:"right_display_name,omitempty"`
	RightEmail       string `json:"right_email,omitempty"`
	RightLogin       string `json:"right_login,omitempty"`

	AliasLeftIDs  []string `json:"alias_left_ids,omitempty"`
	AliasRightIDs []string `json:"alias_right_ids,omitempty"`

	AliasDisplayNames []string `json:"alias_display_names,omitempty"`
	AliasEmails       []string `json:"alias_emails,omitempty"`
	AliasLogins       []string `json:"alias_logins,omitempty"`

	Method     Method  `json:"method"`
	Confidence float64 `json:"confidence"`
}

// Resolution is the complete output of one engine run.
type Resolution struct {
	Links          []ResolvedLink      `json:"links"`
	UnmatchedLeft  []RawIdentitySignal `json:"unmatched_left"`
	UnmatchedRight []RawIdentitySignal `json:"unmatched_right"`
}

// LinkID derives a stable identifier for a left/right pairing. Reruns over
// the same pools must reproduce the same ids.
func LinkID(leftID, rightID string) string {
	digest := sha1.Sum([]byte(fmt.Sprintf("%s|%s", leftID, rightID)))
	return hex.EncodeToString(digest[:])[:20]
}
