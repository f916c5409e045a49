package models

// Session is the client's record of an authenticated identity. It is
// the exact shape the backend returns from /auth/login and the shape we
// persist to disk between runs.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Authenticated reports whether the session carries a usable bearer
// credential. A login response without a token is NOT a session.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}
