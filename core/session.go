package core

// Session is the persisted identity for one browser client: the opaque
// bearer token and the last-known profile. The two travel together;
// they are written and cleared as a unit, never independently.
type Session struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
}

// TokenPresent reports whether the session holds a bearer token.
func (s *Session) TokenPresent() bool {
	return s != nil && s.Token != ""
}
