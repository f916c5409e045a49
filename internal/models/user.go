package models

// Role is the closed set of account roles the backend knows about.
// Keeping this as a named type (instead of comparing raw strings all
// over the place) means a typo in a role check fails loudly at compile
// time rather than silently denying access.
type Role string

const (
	RoleUser          Role = "USER"
	RoleAdmin         Role = "ADMIN"
	RoleTicketChecker Role = "TICKET_CHECKER"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleTicketChecker:
		return true
	}
	return false
}

// In reports whether the role is a member of the given set.
func (r Role) In(set ...Role) bool {
	for _, allowed := range set {
		if r == allowed {
			return true
		}
	}
	return false
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
