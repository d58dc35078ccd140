package core

import "encoding/json"

// Profile is the server-reported view of a member account.
//
// The onboarding flags are pointers because the backend may omit any of
// them. An absent flag always means "step not completed" - it is never
// treated as unknown.
type Profile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	IsAdmin       bool   `json:"isAdmin"`
	IsWhitelisted *bool  `json:"isWhitelisted,omitempty"`
	HasPassword   *bool  `json:"hasPassword,omitempty"`
	HasDiscord    *bool  `json:"hasDiscord,omitempty"`
	TermsAccepted *bool  `json:"termsAccepted,omitempty"`
}

// flagSet reports whether an optional flag is strictly true.
func flagSet(b *bool) bool {
	return b != nil && *b
}

// Whitelisted reports whether an administrator has approved the account.
func (p *Profile) Whitelisted() bool {
	return p != nil && flagSet(p.IsWhitelisted)
}

// PasswordSet reports whether the password onboarding step is complete.
func (p *Profile) PasswordSet() bool {
	return p != nil && flagSet(p.HasPassword)
}

// DiscordLinked reports whether a Discord account has been linked.
func (p *Profile) DiscordLinked() bool {
	return p != nil && flagSet(p.HasDiscord)
}

// AcceptedTerms reports whether the terms of service have been accepted.
func (p *Profile) AcceptedTerms() bool {
	return p != nil && flagSet(p.TermsAccepted)
}

// DecodeProfile parses a JSON profile payload, typically the `user`
// parameter of a provider callback. A garbled payload is rejected whole
// so it can never produce a partially written profile.
func DecodeProfile(payload string) (*Profile, error) {
	profile := &Profile{}
	if err := json.Unmarshal([]byte(payload), profile); err != nil {
		return nil, ErrMalformedProfile
	}
	return profile, nil
}
