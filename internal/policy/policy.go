// Package policy decides whether a principal may perform an action on a
// resource in the organization -> team -> objective -> key result -> check-in
// hierarchy.
package policy

import (
	"github.com/salim0986/okr-production-sub000/internal/domain"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// Action enumerates the operations access is decided for.
type Action string

const (
	ActionRead            Action = "read"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionPurge           Action = "purge"
	ActionCreateTeam      Action = "create_team"
	ActionCreateUser      Action = "create_user"
	ActionAssignLead      Action = "assign_lead"
	ActionCreateObjective Action = "create_objective"
	ActionCreateKeyResult Action = "create_key_result"
	ActionSubmitCheckIn   Action = "submit_check_in"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionComment         Action = "comment"
)

// DenyKind tells the boundary how a denial should surface.
type DenyKind int

const (
	DenyNone DenyKind = iota
	// DenyNotFound hides the resource's existence from the caller.
	DenyNotFound
	// DenyForbidden reports a visible resource the action is not allowed on.
	DenyForbidden
)

// Decision is the outcome of an access check.
type Decision struct {
	Allowed bool
	Deny    DenyKind
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func notFound(reason string) Decision {
	return Decision{Deny: DenyNotFound, Reason: reason}
}

func forbidden(reason string) Decision {
	return Decision{Deny: DenyForbidden, Reason: reason}
}

// Err converts a denial into the matching domain error.
func (d Decision) Err(ref domain.ResourceRef) error {
	if d.Allowed {
		return nil
	}
	if d.Deny == DenyNotFound {
		return apperrors.NewNotFound(string(ref.Kind), map[string]any{"id": ref.ID})
	}
	return apperrors.NewForbidden(d.Reason)
}

var (
	everyone  = []domain.Role{domain.RoleAdmin, domain.RoleTeamLead, domain.RoleEmployee}
	adminOnly = []domain.Role{domain.RoleAdmin}
	managers  = []domain.Role{domain.RoleAdmin, domain.RoleTeamLead}
	members   = []domain.Role{domain.RoleTeamLead, domain.RoleEmployee}
)

// ceilings lists, per resource kind and action, the roles allowed to attempt it.
var ceilings = map[domain.ResourceKind]map[Action][]domain.Role{
	domain.ResourceOrganization: {
		ActionRead:       everyone,
		ActionUpdate:     adminOnly,
		ActionCreateTeam: adminOnly,
		ActionCreateUser: adminOnly,
	},
	domain.ResourceTeam: {
		ActionRead:            everyone,
		ActionUpdate:          adminOnly,
		ActionDelete:          adminOnly,
		ActionAssignLead:      adminOnly,
		ActionCreateObjective: managers,
	},
	domain.ResourceUser: {
		ActionRead:   everyone,
		ActionUpdate: adminOnly,
		ActionDelete: adminOnly,
		ActionPurge:  adminOnly,
	},
	domain.ResourceObjective: {
		ActionRead:            everyone,
		ActionUpdate:          managers,
		ActionDelete:          adminOnly,
		ActionCreateKeyResult: managers,
	},
	domain.ResourceKeyResult: {
		ActionRead:          everyone,
		ActionUpdate:        managers,
		ActionDelete:        adminOnly,
		ActionSubmitCheckIn: members,
		ActionComment:       everyone,
	},
	domain.ResourceCheckIn: {
		ActionRead:    everyone,
		ActionApprove: managers,
		ActionReject:  managers,
	},
	domain.ResourceComment: {
		ActionRead:   everyone,
		ActionUpdate: everyone,
		ActionDelete: everyone,
	},
	domain.ResourceNotification: {
		ActionRead:   everyone,
		ActionUpdate: everyone,
		ActionDelete: everyone,
	},
}

func roleAllows(role domain.Role, kind domain.ResourceKind, action Action) bool {
	for _, r := range ceilings[kind][action] {
		if r == role {
			return true
		}
	}
	return false
}

// Decide applies the access rules in precedence order: organization scope,
// role ceiling, team scope, ownership, approval.
func Decide(p domain.Principal, action Action, o domain.Ownership) Decision {
	if p.IsSystem() {
		return allow()
	}
	if p.OrganizationID == "" || p.OrganizationID != o.OrganizationID {
		return notFound("cross-organization")
	}
	if o.TeamOrganizationID != nil && *o.TeamOrganizationID != o.OrganizationID {
		return notFound("cross-organization")
	}
	if !roleAllows(p.Role, o.Ref.Kind, action) {
		return forbidden("role " + string(p.Role) + " may not " + string(action) + " " + string(o.Ref.Kind))
	}
	if d := teamScope(p, action, o); !d.Allowed {
		return d
	}
	if d := ownership(p, action, o); !d.Allowed {
		return d
	}
	if action == ActionApprove || action == ActionReject {
		return approval(p, o)
	}
	return allow()
}

func teamScope(p domain.Principal, action Action, o domain.Ownership) Decision {
	switch p.Role {
	case domain.RoleAdmin:
		return allow()
	case domain.RoleTeamLead, domain.RoleEmployee:
		switch o.Ref.Kind {
		case domain.ResourceOrganization, domain.ResourceNotification:
			return allow()
		}
		if o.TeamID != nil && p.InTeam(*o.TeamID) {
			return allow()
		}
		if action == ActionRead && (o.OwnedBy(p.ID) || o.AssignedTo(p.ID)) {
			return allow()
		}
		return forbidden("resource belongs to another team")
	default:
		return forbidden("unknown role")
	}
}

func ownership(p domain.Principal, action Action, o domain.Ownership) Decision {
	switch o.Ref.Kind {
	case domain.ResourceComment:
		switch action {
		case ActionUpdate:
			if !o.OwnedBy(p.ID) {
				return forbidden("only the author may edit a comment")
			}
		case ActionDelete:
			if !o.OwnedBy(p.ID) && p.Role != domain.RoleAdmin {
				return forbidden("only the author or an admin may delete a comment")
			}
		}
	case domain.ResourceKeyResult:
		if action == ActionSubmitCheckIn && !o.AssignedTo(p.ID) {
			return forbidden("only the assignee may submit check-ins")
		}
	case domain.ResourceNotification:
		if !o.OwnedBy(p.ID) {
			return forbidden("notification belongs to another user")
		}
	}
	return allow()
}

func approval(p domain.Principal, o domain.Ownership) Decision {
	switch p.Role {
	case domain.RoleAdmin:
		return allow()
	case domain.RoleTeamLead:
		if o.AssigneeTeamID != nil && p.InTeam(*o.AssigneeTeamID) {
			return allow()
		}
		return forbidden("assignee is not on your team")
	case domain.RoleEmployee:
		return forbidden("employees may not review check-ins")
	default:
		return forbidden("unknown role")
	}
}

// ListScope returns the team list queries are restricted to. restricted is
// false for admins and the system principal; a restricted principal without
// a team sees nothing.
func ListScope(p domain.Principal) (teamID *string, restricted bool) {
	if p.IsSystem() {
		return nil, false
	}
	switch p.Role {
	case domain.RoleAdmin:
		return nil, false
	case domain.RoleTeamLead, domain.RoleEmployee:
		return p.TeamID, true
	default:
		return nil, true
	}
}
