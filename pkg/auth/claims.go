package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Role names carried in the roles claim.
const (
	RoleBorrower    = "borrower"
	RoleUnderwriter = "underwriter"
	RoleAdmin       = "admin"
)

// Claims is the lending access token. The borrower identity is the
// registered subject.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Validate is run by the parser after the registered claims pass.
func (c Claims) Validate() error {
	if c.Subject == "" {
		return ErrMissingSubject
	}
	return nil
}

// UserID returns the authenticated borrower identifier.
func (c Claims) UserID() string {
	return c.Subject
}

// HasRole reports whether role was granted.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether at least one of roles was granted.
func (c Claims) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, c.HasRole)
}
