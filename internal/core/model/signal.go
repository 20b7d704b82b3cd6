package model

// System identifies which identity space a signal was observed in.
type System string

const (
	SystemLeft  System = "LEFT"  // issue tracker
	SystemRight System = "RIGHT" // source control
)

// RawIdentitySignal is one observed identity touchpoint in a single system.
// Same-primary_id rows are pre-merged upstream, so the alias fields carry
// every secondary value already known for this id within its own system.
type RawIdentitySignal struct {
	System      System `json:"system"`
	PrimaryID   string `json:"primary_id"`
	DisplayName string `json:"display_name,omitempty"`
	Login       string `json:"login,omitempty"`
	Email       string `json:"email,omitempty"`

	AliasDisplayNames []string `json:"alias_display_names,omitempty"`
	AliasEmails       []string `json:"alias_emails,omitempty"`
	AliasLogins       []string `json:"alias_logins,omitempty"`
}

// Usable reports whether the signal carries at least one text field worth
// matching on. Signals that fail this are dropped before candidate
// generation.
func (s *RawIdentitySignal) Usable() bool {
	return s.DisplayName != "" || s.Login != "" || s.Email != ""
}

// NormalizedSignal is the cached, comparison-ready view of a signal. It is
// derived deterministically and never outlives its source.
type NormalizedSignal struct {
	Raw *RawIdentitySignal

	NameTokens map[string]struct{}

	AlnumName  string // display name stripped to [a-z0-9]
	AlnumLogin string // login stripped to [a-z0-9]
	BaseLogin  string // AlnumLogin with any trailing digits removed

	Email       string   // lower-cased, trimmed
	AliasEmails []string // normalized, empty entries removed
}
