package policy

import (
	"testing"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

func sp(v string) *string { return &v }

func principal(id string, role domain.Role, team *string) domain.Principal {
	return domain.Principal{ID: id, Role: role, OrganizationID: "org1", TeamID: team}
}

func checkInIn(team, assignee, assigneeTeam, submitter string) domain.Ownership {
	return domain.Ownership{
		Ref:            domain.Ref(domain.ResourceCheckIn, "c1"),
		OrganizationID: "org1",
		TeamID:         sp(team),
		OwnerID:        sp(submitter),
		AssigneeID:     sp(assignee),
		AssigneeTeamID: sp(assigneeTeam),
	}
}

func TestDecide_CrossOrganizationIsNotFound(t *testing.T) {
	admin := domain.Principal{ID: "a1", Role: domain.RoleAdmin, OrganizationID: "org2"}
	o := domain.Ownership{Ref: domain.Ref(domain.ResourceObjective, "o1"), OrganizationID: "org1", TeamID: sp("t1")}

	for _, action := range []Action{ActionRead, ActionUpdate, ActionDelete} {
		d := Decide(admin, action, o)
		if d.Allowed || d.Deny != DenyNotFound {
			t.Errorf("Decide(%s) = %+v, want NotFound", action, d)
		}
	}
}

func TestDecide_InconsistentUserTeamIsNotFound(t *testing.T) {
	admin := principal("a1", domain.RoleAdmin, nil)
	o := domain.Ownership{
		Ref:                domain.Ref(domain.ResourceUser, "u1"),
		OrganizationID:     "org1",
		TeamOrganizationID: sp("org2"),
		TeamID:             sp("t9"),
	}
	if d := Decide(admin, ActionRead, o); d.Deny != DenyNotFound {
		t.Errorf("Decide = %+v, want NotFound", d)
	}
}

func TestDecide_SystemPrincipalAllowed(t *testing.T) {
	o := domain.Ownership{Ref: domain.Ref(domain.ResourceNotification, "n1"), OrganizationID: "org1", OwnerID: sp("u1")}
	if d := Decide(domain.SystemPrincipal(), ActionUpdate, o); !d.Allowed {
		t.Errorf("Decide(system) = %+v, want allowed", d)
	}
}

func TestDecide_ForgedSystemRoleGetsNothing(t *testing.T) {
	p := domain.Principal{ID: "system", Role: domain.Role("system"), OrganizationID: "org1"}
	o := domain.Ownership{Ref: domain.Ref(domain.ResourceTeam, "t1"), OrganizationID: "org1", TeamID: sp("t1")}
	if d := Decide(p, ActionRead, o); d.Allowed {
		t.Error("a principal claiming a non-declared role must not be allowed")
	}
}

func TestDecide_Approval(t *testing.T) {
	tests := []struct {
		name    string
		p       domain.Principal
		o       domain.Ownership
		allowed bool
	}{
		{"admin any team", principal("a1", domain.RoleAdmin, nil), checkInIn("t2", "e2", "t2", "e2"), true},
		{"lead same team", principal("l1", domain.RoleTeamLead, sp("t1")), checkInIn("t1", "e1", "t1", "e1"), true},
		{"lead other team", principal("l1", domain.RoleTeamLead, sp("t1")), checkInIn("t2", "e2", "t2", "e2"), false},
		{"lead, objective in team but assignee moved", principal("l1", domain.RoleTeamLead, sp("t1")), checkInIn("t1", "e2", "t2", "e2"), false},
		{"employee", principal("e1", domain.RoleEmployee, sp("t1")), checkInIn("t1", "e1", "t1", "e1"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, action := range []Action{ActionApprove, ActionReject} {
				d := Decide(tc.p, action, tc.o)
				if d.Allowed != tc.allowed {
					t.Errorf("Decide(%s) allowed = %v, want %v (%s)", action, d.Allowed, tc.allowed, d.Reason)
				}
				if !d.Allowed && d.Deny != DenyForbidden {
					t.Errorf("Decide(%s) deny = %v, want Forbidden", action, d.Deny)
				}
			}
		})
	}
}

func TestDecide_CommentOwnership(t *testing.T) {
	comment := domain.Ownership{
		Ref:            domain.Ref(domain.ResourceComment, "cm1"),
		OrganizationID: "org1",
		TeamID:         sp("t1"),
		OwnerID:        sp("e1"),
	}
	admin := principal("a1", domain.RoleAdmin, nil)
	author := principal("e1", domain.RoleEmployee, sp("t1"))
	peer := principal("e2", domain.RoleEmployee, sp("t1"))

	if d := Decide(admin, ActionUpdate, comment); d.Allowed {
		t.Error("admin must not edit another user's comment")
	}
	if d := Decide(admin, ActionDelete, comment); !d.Allowed {
		t.Errorf("admin delete = %+v, want allowed", d)
	}
	if d := Decide(author, ActionUpdate, comment); !d.Allowed {
		t.Errorf("author update = %+v, want allowed", d)
	}
	if d := Decide(peer, ActionDelete, comment); d.Allowed {
		t.Error("peer must not delete another user's comment")
	}
	if d := Decide(peer, ActionRead, comment); !d.Allowed {
		t.Errorf("peer read = %+v, want allowed", d)
	}
}

func TestDecide_RoleCeilings(t *testing.T) {
	team := domain.Ownership{Ref: domain.Ref(domain.ResourceTeam, "t1"), OrganizationID: "org1", TeamID: sp("t1")}
	lead := principal("l1", domain.RoleTeamLead, sp("t1"))
	emp := principal("e1", domain.RoleEmployee, sp("t1"))

	if d := Decide(lead, ActionUpdate, team); d.Allowed {
		t.Error("team_lead must not update teams")
	}
	if d := Decide(lead, ActionCreateObjective, team); !d.Allowed {
		t.Errorf("team_lead create objective in own team = %+v", d)
	}
	if d := Decide(emp, ActionCreateObjective, team); d.Allowed || d.Deny != DenyForbidden {
		t.Errorf("employee create objective = %+v, want Forbidden", d)
	}

	user := domain.Ownership{Ref: domain.Ref(domain.ResourceUser, "u1"), OrganizationID: "org1", OwnerID: sp("u1")}
	for _, action := range []Action{ActionUpdate, ActionDelete, ActionPurge} {
		if d := Decide(lead, action, user); d.Allowed {
			t.Errorf("team_lead %s user allowed", action)
		}
	}
}

func TestDecide_TeamScope(t *testing.T) {
	objective := domain.Ownership{Ref: domain.Ref(domain.ResourceObjective, "o1"), OrganizationID: "org1", TeamID: sp("t2")}
	lead := principal("l1", domain.RoleTeamLead, sp("t1"))
	noTeam := principal("e9", domain.RoleEmployee, nil)
	admin := principal("a1", domain.RoleAdmin, nil)

	if d := Decide(lead, ActionRead, objective); d.Allowed || d.Deny != DenyForbidden {
		t.Errorf("lead read other team objective = %+v, want Forbidden", d)
	}
	if d := Decide(noTeam, ActionRead, objective); d.Allowed {
		t.Error("employee without team must not read team objectives")
	}
	if d := Decide(admin, ActionUpdate, objective); !d.Allowed {
		t.Errorf("admin update = %+v, want allowed", d)
	}

	self := domain.Ownership{Ref: domain.Ref(domain.ResourceUser, "e9"), OrganizationID: "org1", OwnerID: sp("e9")}
	if d := Decide(noTeam, ActionRead, self); !d.Allowed {
		t.Errorf("read self = %+v, want allowed", d)
	}
}

func TestDecide_SubmitCheckInRequiresAssignee(t *testing.T) {
	kr := domain.Ownership{
		Ref:            domain.Ref(domain.ResourceKeyResult, "k1"),
		OrganizationID: "org1",
		TeamID:         sp("t1"),
		AssigneeID:     sp("e1"),
		AssigneeTeamID: sp("t1"),
	}
	if d := Decide(principal("e1", domain.RoleEmployee, sp("t1")), ActionSubmitCheckIn, kr); !d.Allowed {
		t.Errorf("assignee submit = %+v, want allowed", d)
	}
	if d := Decide(principal("e2", domain.RoleEmployee, sp("t1")), ActionSubmitCheckIn, kr); d.Allowed {
		t.Error("non-assignee submit allowed")
	}
	if d := Decide(principal("a1", domain.RoleAdmin, nil), ActionSubmitCheckIn, kr); d.Allowed {
		t.Error("admin submit allowed")
	}
}

func TestDecide_NotificationRecipientOnly(t *testing.T) {
	n := domain.Ownership{Ref: domain.Ref(domain.ResourceNotification, "n1"), OrganizationID: "org1", OwnerID: sp("e1")}
	if d := Decide(principal("e1", domain.RoleEmployee, nil), ActionUpdate, n); !d.Allowed {
		t.Errorf("recipient update = %+v", d)
	}
	if d := Decide(principal("a1", domain.RoleAdmin, nil), ActionRead, n); d.Allowed {
		t.Error("admin must not read another user's notification")
	}
}

func TestListScope(t *testing.T) {
	if team, restricted := ListScope(principal("a1", domain.RoleAdmin, nil)); restricted || team != nil {
		t.Errorf("admin scope = %v, %v", team, restricted)
	}
	team, restricted := ListScope(principal("l1", domain.RoleTeamLead, sp("t1")))
	if !restricted || team == nil || *team != "t1" {
		t.Errorf("lead scope = %v, %v", team, restricted)
	}
	if _, restricted := ListScope(domain.SystemPrincipal()); restricted {
		t.Error("system scope restricted")
	}
}
