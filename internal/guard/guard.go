// Package guard decides whether the current session may enter a view.
// It is the terminal-client counterpart of the old ProtectedRoute: no
// session means deny, and a session whose role is outside the view's
// required set means deny. Denial is a navigation decision only; the
// guard never mutates the session.
package guard

import (
	"nebula-cli/internal/models"
)

// SessionSource is the slice of the session store the guard needs.
type SessionSource interface {
	Current() *models.Session
}

type Guard struct {
	sessions SessionSource
}

func New(sessions SessionSource) *Guard {
	return &Guard{sessions: sessions}
}

// Admit reports whether navigation to a view requiring one of the
// given roles is allowed. An empty required set means "any
// authenticated user".
func (g *Guard) Admit(required ...models.Role) bool {
	session := g.sessions.Current()
	if !session.Authenticated() {
		return false
	}
	if len(required) == 0 {
		return session.User.Role.Valid()
	}
	return session.User.Role.In(required...)
}

// HomeView names the landing view for a role, mirroring the post-login
// redirect the web client did.
func HomeView(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "admin"
	case models.RoleTicketChecker:
		return "checker"
	default:
		return "events"
	}
}
