package domain

import dErrors "jobboard/pkg/domain-errors"

// Role is the single, immutable role an identity holds.
//
// Token validation and the Postgres user store build it with ParseRole.
// Elsewhere only the constants below are used.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleApplicant Role = "APPLICANT"
)

var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleApplicant: true,
}

// ParseRole constructs a Role from external input. Matching is exact.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}
