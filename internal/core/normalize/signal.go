package normalize

import "github.com/agenthands/cobalt/internal/core/model"

// Signal builds the cached comparison view of a raw signal.
func Signal(raw *model.RawIdentitySignal) *model.NormalizedSignal {
	n := &model.NormalizedSignal{
		Raw:        raw,
		NameTokens: Tokens(raw.DisplayName),
		AlnumName:  StripToAlnum(raw.DisplayName),
		AlnumLogin: StripToAlnum(raw.Login),
		Email:      Email(raw.Email),
	}
	n.BaseLogin = StripTrailingDigits(n.AlnumLogin)
	for _, alias := range raw.AliasEmails {
		if v := Email(alias); v != "" {
			n.AliasEmails = append(n.AliasEmails, v)
		}
	}
	return n
}
