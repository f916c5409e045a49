package guard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nebula-cli/internal/guard"
	"nebula-cli/internal/models"
)

type fakeSessions struct {
	session *models.Session
}

func (f *fakeSessions) Current() *models.Session { return f.session }

func sessionWithRole(role models.Role) *models.Session {
	return &models.Session{
		Token: "token",
		User:  models.User{ID: 1, Email: "who@example.com", Role: role},
	}
}

func TestAdmitDeniesWithoutSession(t *testing.T) {
	g := guard.New(&fakeSessions{})
	assert.False(t, g.Admit(models.RoleUser))
	assert.False(t, g.Admit())
}

func TestAdmitMatchesRequiredRole(t *testing.T) {
	cases := []struct {
		role     models.Role
		required []models.Role
		want     bool
	}{
		{models.RoleUser, []models.Role{models.RoleUser}, true},
		{models.RoleUser, []models.Role{models.RoleAdmin}, false},
		{models.RoleAdmin, []models.Role{models.RoleAdmin}, true},
		{models.RoleAdmin, []models.Role{models.RoleUser}, false},
		{models.RoleTicketChecker, []models.Role{models.RoleTicketChecker}, true},
		{models.RoleTicketChecker, []models.Role{models.RoleUser, models.RoleAdmin}, false},
		{models.RoleUser, []models.Role{models.RoleUser, models.RoleAdmin}, true},
	}
	for _, tc := range cases {
		g := guard.New(&fakeSessions{session: sessionWithRole(tc.role)})
		assert.Equal(t, tc.want, g.Admit(tc.required...), "role %s vs %v", tc.role, tc.required)
	}
}

func TestAdmitAnyAuthenticatedNeedsValidRole(t *testing.T) {
	g := guard.New(&fakeSessions{session: sessionWithRole(models.RoleUser)})
	assert.True(t, g.Admit())

	g = guard.New(&fakeSessions{session: sessionWithRole(models.Role("SUPERUSER"))})
	assert.False(t, g.Admit())
}

func TestHomeViewPerRole(t *testing.T) {
	assert.Equal(t, "admin", guard.HomeView(models.RoleAdmin))
	assert.Equal(t, "checker", guard.HomeView(models.RoleTicketChecker))
	assert.Equal(t, "events", guard.HomeView(models.RoleUser))
}
