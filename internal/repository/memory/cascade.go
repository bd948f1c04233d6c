package memory

func (t *tables) deleteKeyResult(id string) {
	for cid, c := range t.checkIns {
		if c.KeyResultID == id {
			delete(t.checkIns, cid)
		}
	}
	for cid, c := range t.comments {
		if c.KeyResultID == id {
			delete(t.comments, cid)
		}
	}
	delete(t.keyResults, id)
}

func (t *tables) deleteObjective(id string) {
	for krID, kr := range t.keyResults {
		if kr.ObjectiveID == id {
			t.deleteKeyResult(krID)
		}
	}
	delete(t.objectives, id)
}

func (t *tables) deleteTeam(id string) {
	for oid, o := range t.objectives {
		if o.TeamID == id {
			t.deleteObjective(oid)
		}
	}
	for uid, u := range t.users {
		if eqPtr(u.TeamID, id) {
			u.TeamID = nil
			t.users[uid] = u
		}
	}
	delete(t.teams, id)
}

// deleteUser removes the user with everything it authored and detaches it
// from records that only reference it.
func (t *tables) deleteUser(id string) {
	for cid, c := range t.checkIns {
		switch {
		case c.UserID == id:
			delete(t.checkIns, cid)
		case eqPtr(c.ReviewedBy, id):
			c.ReviewedBy = nil
			t.checkIns[cid] = c
		}
	}
	for cid, c := range t.comments {
		if c.UserID == id {
			delete(t.comments, cid)
		}
	}
	for nid, n := range t.notifications {
		if n.UserID == id {
			delete(t.notifications, nid)
		}
	}
	for krID, kr := range t.keyResults {
		if eqPtr(kr.AssignedTo, id) {
			kr.AssignedTo = nil
			t.keyResults[krID] = kr
		}
	}
	for oid, o := range t.objectives {
		if eqPtr(o.CreatedBy, id) {
			o.CreatedBy = nil
			t.objectives[oid] = o
		}
	}
	for tid, team := range t.teams {
		if eqPtr(team.LeadID, id) {
			team.LeadID = nil
			t.teams[tid] = team
		}
	}
	for oid, org := range t.organizations {
		if eqPtr(org.CreatedBy, id) {
			org.CreatedBy = nil
			t.organizations[oid] = org
		}
	}
	delete(t.users, id)
}
