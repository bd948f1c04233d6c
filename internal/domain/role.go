package domain

import "fmt"

// Role enumerates the closed set of user roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTeamLead Role = "team_lead"
	RoleEmployee Role = "employee"
)

// ParseRole converts an external value into a Role. It never produces the
// system capability; see SystemPrincipal.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleAdmin, RoleTeamLead, RoleEmployee:
		return Role(value), nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Principal is the authenticated caller an access decision is made for.
type Principal struct {
	ID             string
	Role           Role
	OrganizationID string
	TeamID         *string

	system bool
}

// SystemPrincipal returns the server-internal capability that bypasses role
// checks. Only in-process fan-out code may use it.
func SystemPrincipal() Principal {
	return Principal{ID: "system", system: true}
}

// IsSystem reports whether p is the server-internal capability.
func (p Principal) IsSystem() bool {
	return p.system
}

// InTeam reports whether p belongs to teamID.
func (p Principal) InTeam(teamID string) bool {
	return p.TeamID != nil && *p.TeamID == teamID
}
