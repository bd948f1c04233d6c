package memory

import (
	"context"
	"time"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/repository"
)

type organizationRepo struct{ s *Store }

func (r organizationRepo) Create(ctx context.Context, org *domain.Organization) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		org.ID = t.newID()
		org.CreatedAt = now
		t.organizations[org.ID] = *org
		return nil
	})
}

func (r organizationRepo) Update(ctx context.Context, org *domain.Organization) error {
	return r.s.write(ctx, func(t *tables, _ time.Time) error {
		current, ok := t.organizations[org.ID]
		if !ok {
			return repository.ErrNotFound
		}
		current.Name = org.Name
		current.CreatedBy = org.CreatedBy
		t.organizations[org.ID] = current
		return nil
	})
}

func (r organizationRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var out domain.Organization
	err := r.s.read(ctx, func(t *tables) error {
		org, ok := t.organizations[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = org
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type teamRepo struct{ s *Store }

func checkLeadFree(t *tables, teamID string, leadID *string) error {
	if leadID == nil {
		return nil
	}
	for id, team := range t.teams {
		if id != teamID && eqPtr(team.LeadID, *leadID) {
			return duplicate("teams_lead_id_key")
		}
	}
	return nil
}

func (r teamRepo) Create(ctx context.Context, team *domain.Team) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		if err := checkLeadFree(t, "", team.LeadID); err != nil {
			return err
		}
		team.ID = t.newID()
		team.CreatedAt = now
		team.UpdatedAt = now
		t.teams[team.ID] = *team
		return nil
	})
}

func (r teamRepo) Update(ctx context.Context, team *domain.Team) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		current, ok := t.teams[team.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if err := checkLeadFree(t, team.ID, team.LeadID); err != nil {
			return err
		}
		current.Name = team.Name
		current.LeadID = team.LeadID
		current.UpdatedAt = now
		t.teams[team.ID] = current
		team.UpdatedAt = now
		return nil
	})
}

func (r teamRepo) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	var out domain.Team
	err := r.s.read(ctx, func(t *tables) error {
		team, ok := t.teams[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = team
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r teamRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(t *tables, _ time.Time) error {
		if _, ok := t.teams[id]; !ok {
			return repository.ErrNotFound
		}
		t.deleteTeam(id)
		return nil
	})
}

func (r teamRepo) ListByOrganization(ctx context.Context, organizationID string) ([]domain.Team, error) {
	var out []domain.Team
	err := r.s.read(ctx, func(t *tables) error {
		for _, team := range t.teams {
			if team.OrganizationID == organizationID {
				out = append(out, team)
			}
		}
		sortBySeq(t, out, func(v domain.Team) string { return v.ID }, func(a, b domain.Team) (bool, bool) {
			return a.Name < b.Name, a.Name != b.Name
		})
		return nil
	})
	return out, err
}

func (r teamRepo) SetLead(ctx context.Context, teamID string, leadID *string) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		team, ok := t.teams[teamID]
		if !ok {
			return repository.ErrNotFound
		}
		if err := checkLeadFree(t, teamID, leadID); err != nil {
			return err
		}
		team.LeadID = leadID
		team.UpdatedAt = now
		t.teams[teamID] = team
		return nil
	})
}

func (r teamRepo) ClearLeadership(ctx context.Context, userID string) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		for id, team := range t.teams {
			if eqPtr(team.LeadID, userID) {
				team.LeadID = nil
				team.UpdatedAt = now
				t.teams[id] = team
			}
		}
		return nil
	})
}

type userRepo struct{ s *Store }

func checkEmailFree(t *tables, userID, email string) error {
	for id, u := range t.users {
		if id != userID && u.Email == email {
			return duplicate("users_email_key")
		}
	}
	return nil
}

func (r userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		if err := checkEmailFree(t, "", user.Email); err != nil {
			return err
		}
		user.ID = t.newID()
		user.CreatedAt = now
		user.UpdatedAt = now
		t.users[user.ID] = *user
		return nil
	})
}

func (r userRepo) Update(ctx context.Context, user *domain.User) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		current, ok := t.users[user.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if err := checkEmailFree(t, user.ID, user.Email); err != nil {
			return err
		}
		current.Name = user.Name
		current.Email = user.Email
		current.PasswordHash = user.PasswordHash
		current.Role = user.Role
		current.TeamID = user.TeamID
		current.UpdatedAt = now
		t.users[user.ID] = current
		user.UpdatedAt = now
		return nil
	})
}

func (r userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.ID == id })
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.Email == email })
}

func (r userRepo) find(ctx context.Context, match func(domain.User) bool) (*domain.User, error) {
	var out *domain.User
	err := r.s.read(ctx, func(t *tables) error {
		for _, u := range t.users {
			if match(u) {
				found := u
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r userRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	err := r.s.read(ctx, func(t *tables) error {
		for _, u := range t.users {
			if u.OrganizationID != filter.OrganizationID {
				continue
			}
			if filter.TeamID != nil && !eqPtr(u.TeamID, *filter.TeamID) {
				continue
			}
			if filter.Unassigned && u.TeamID != nil {
				continue
			}
			if filter.Role != nil && u.Role != *filter.Role {
				continue
			}
			if u.IsDeleted && !filter.IncludeDeleted {
				continue
			}
			out = append(out, u)
		}
		sortBySeq(t, out, func(v domain.User) string { return v.ID }, func(a, b domain.User) (bool, bool) {
			return a.Name < b.Name, a.Name != b.Name
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repository.Paginate(out, filter.Limit, filter.Offset, 100), nil
}

func (r userRepo) SoftDelete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		u, ok := t.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		u.IsDeleted = true
		u.UpdatedAt = now
		t.users[id] = u
		return nil
	})
}

func (r userRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(t *tables, _ time.Time) error {
		if _, ok := t.users[id]; !ok {
			return repository.ErrNotFound
		}
		t.deleteUser(id)
		return nil
	})
}

func (r userRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.s.write(ctx, func(t *tables, _ time.Time) error {
		u, ok := t.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		u.LastLogin = &at
		t.users[id] = u
		return nil
	})
}

type objectiveRepo struct{ s *Store }

func (r objectiveRepo) Create(ctx context.Context, objective *domain.Objective) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		objective.ID = t.newID()
		objective.CreatedAt = now
		objective.UpdatedAt = now
		t.objectives[objective.ID] = *objective
		return nil
	})
}

func (r objectiveRepo) Update(ctx context.Context, objective *domain.Objective) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		current, ok := t.objectives[objective.ID]
		if !ok {
			return repository.ErrNotFound
		}
		current.Title = objective.Title
		current.Description = objective.Description
		current.StartDate = objective.StartDate
		current.EndDate = objective.EndDate
		current.Status = objective.Status
		current.UpdatedAt = now
		t.objectives[objective.ID] = current
		objective.UpdatedAt = now
		return nil
	})
}

func (r objectiveRepo) GetByID(ctx context.Context, id string) (*domain.Objective, error) {
	var out domain.Objective
	err := r.s.read(ctx, func(t *tables) error {
		o, ok := t.objectives[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r objectiveRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(t *tables, _ time.Time) error {
		if _, ok := t.objectives[id]; !ok {
			return repository.ErrNotFound
		}
		t.deleteObjective(id)
		return nil
	})
}

func (r objectiveRepo) List(ctx context.Context, filter repository.ObjectiveFilter) ([]domain.Objective, error) {
	var out []domain.Objective
	err := r.s.read(ctx, func(t *tables) error {
		for _, o := range t.objectives {
			team, ok := t.teams[o.TeamID]
			if !ok || team.OrganizationID != filter.OrganizationID {
				continue
			}
			if filter.TeamID != nil && o.TeamID != *filter.TeamID {
				continue
			}
			if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
				continue
			}
			out = append(out, o)
		}
		sortBySeq(t, out, func(v domain.Objective) string { return v.ID }, func(a, b domain.Objective) (bool, bool) {
			return a.EndDate.Before(b.EndDate), !a.EndDate.Equal(b.EndDate)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repository.Paginate(out, filter.Limit, filter.Offset, 100), nil
}

func containsStatus(statuses []domain.Status, s domain.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (r objectiveRepo) UpdateProgress(ctx context.Context, id string, progress int, status domain.Status) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		o, ok := t.objectives[id]
		if !ok {
			return repository.ErrNotFound
		}
		o.Progress = progress
		o.Status = status
		o.UpdatedAt = now
		t.objectives[id] = o
		return nil
	})
}

type keyResultRepo struct{ s *Store }

func (r keyResultRepo) Create(ctx context.Context, kr *domain.KeyResult) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		kr.ID = t.newID()
		kr.CreatedAt = now
		kr.UpdatedAt = now
		t.keyResults[kr.ID] = *kr
		return nil
	})
}

func (r keyResultRepo) Update(ctx context.Context, kr *domain.KeyResult) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		current, ok := t.keyResults[kr.ID]
		if !ok {
			return repository.ErrNotFound
		}
		current.Title = kr.Title
		current.TargetValue = kr.TargetValue
		current.AssignedTo = kr.AssignedTo
		current.Units = kr.Units
		current.StartDate = kr.StartDate
		current.EndDate = kr.EndDate
		current.Status = kr.Status
		current.UpdatedAt = now
		t.keyResults[kr.ID] = current
		kr.UpdatedAt = now
		return nil
	})
}

func (r keyResultRepo) GetByID(ctx context.Context, id string) (*domain.KeyResult, error) {
	var out domain.KeyResult
	err := r.s.read(ctx, func(t *tables) error {
		kr, ok := t.keyResults[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = kr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r keyResultRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(t *tables, _ time.Time) error {
		if _, ok := t.keyResults[id]; !ok {
			return repository.ErrNotFound
		}
		t.deleteKeyResult(id)
		return nil
	})
}

func (r keyResultRepo) ListByObjective(ctx context.Context, objectiveID string) ([]domain.KeyResult, error) {
	return r.list(ctx, func(kr domain.KeyResult) bool { return kr.ObjectiveID == objectiveID })
}

func (r keyResultRepo) ListByAssignee(ctx context.Context, userID string) ([]domain.KeyResult, error) {
	return r.list(ctx, func(kr domain.KeyResult) bool { return eqPtr(kr.AssignedTo, userID) })
}

func (r keyResultRepo) list(ctx context.Context, match func(domain.KeyResult) bool) ([]domain.KeyResult, error) {
	var out []domain.KeyResult
	err := r.s.read(ctx, func(t *tables) error {
		for _, kr := range t.keyResults {
			if match(kr) {
				out = append(out, kr)
			}
		}
		sortBySeq(t, out, func(v domain.KeyResult) string { return v.ID }, nil)
		return nil
	})
	return out, err
}

func (r keyResultRepo) SetCurrentValue(ctx context.Context, id string, value float64) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		kr, ok := t.keyResults[id]
		if !ok {
			return repository.ErrNotFound
		}
		kr.CurrentValue = value
		kr.UpdatedAt = now
		t.keyResults[id] = kr
		return nil
	})
}

type checkInRepo struct{ s *Store }

func (r checkInRepo) Create(ctx context.Context, checkIn *domain.CheckIn) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		checkIn.ID = t.newID()
		checkIn.CreatedAt = now
		t.checkIns[checkIn.ID] = *checkIn
		return nil
	})
}

func (r checkInRepo) GetByID(ctx context.Context, id string) (*domain.CheckIn, error) {
	var out domain.CheckIn
	err := r.s.read(ctx, func(t *tables) error {
		c, ok := t.checkIns[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r checkInRepo) List(ctx context.Context, filter repository.CheckInFilter) ([]domain.CheckIn, error) {
	var out []domain.CheckIn
	err := r.s.read(ctx, func(t *tables) error {
		for _, c := range t.checkIns {
			kr, ok := t.keyResults[c.KeyResultID]
			if !ok {
				continue
			}
			o, ok := t.objectives[kr.ObjectiveID]
			if !ok {
				continue
			}
			team, ok := t.teams[o.TeamID]
			if !ok {
				continue
			}
			if filter.OrganizationID != nil && team.OrganizationID != *filter.OrganizationID {
				continue
			}
			if filter.TeamID != nil && o.TeamID != *filter.TeamID {
				continue
			}
			if filter.KeyResultID != nil && c.KeyResultID != *filter.KeyResultID {
				continue
			}
			if filter.UserID != nil && c.UserID != *filter.UserID {
				continue
			}
			if filter.Status != nil && c.Status != *filter.Status {
				continue
			}
			out = append(out, c)
		}
		// newest first
		sortBySeq(t, out, func(v domain.CheckIn) string { return v.ID }, func(a, b domain.CheckIn) (bool, bool) {
			if !a.CheckInDate.Equal(b.CheckInDate) {
				return a.CheckInDate.After(b.CheckInDate), true
			}
			return t.seq[a.ID] > t.seq[b.ID], true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repository.Paginate(out, filter.Limit, filter.Offset, 50), nil
}

func (r checkInRepo) TransitionStatus(ctx context.Context, id string, from, to domain.CheckInStatus, reviewerID string, at time.Time) error {
	return r.s.write(ctx, func(t *tables, _ time.Time) error {
		c, ok := t.checkIns[id]
		if !ok {
			return repository.ErrNotFound
		}
		if c.Status != from {
			return repository.ErrStaleState
		}
		c.Status = to
		c.ReviewedBy = strPtr(reviewerID)
		c.ReviewedAt = &at
		t.checkIns[id] = c
		return nil
	})
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		comment.ID = t.newID()
		comment.CreatedAt = now
		comment.UpdatedAt = now
		t.comments[comment.ID] = *comment
		return nil
	})
}

func (r commentRepo) Update(ctx context.Context, comment *domain.Comment) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		current, ok := t.comments[comment.ID]
		if !ok {
			return repository.ErrNotFound
		}
		current.Text = comment.Text
		current.UpdatedAt = now
		t.comments[comment.ID] = current
		comment.UpdatedAt = now
		return nil
	})
}

func (r commentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var out domain.Comment
	err := r.s.read(ctx, func(t *tables) error {
		c, ok := t.comments[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r commentRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(t *tables, _ time.Time) error {
		if _, ok := t.comments[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.comments, id)
		return nil
	})
}

func (r commentRepo) ListByKeyResult(ctx context.Context, keyResultID string) ([]domain.Comment, error) {
	var out []domain.Comment
	err := r.s.read(ctx, func(t *tables) error {
		for _, c := range t.comments {
			if c.KeyResultID == keyResultID {
				out = append(out, c)
			}
		}
		sortBySeq(t, out, func(v domain.Comment) string { return v.ID }, nil)
		return nil
	})
	return out, err
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return r.s.write(ctx, func(t *tables, now time.Time) error {
		n.ID = t.newID()
		n.CreatedAt = now
		t.notifications[n.ID] = *n
		return nil
	})
}

func (r notificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	var out domain.Notification
	err := r.s.read(ctx, func(t *tables) error {
		n, ok := t.notifications[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r notificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.s.read(ctx, func(t *tables) error {
		for _, n := range t.notifications {
			if n.UserID != userID || (unreadOnly && n.IsRead) {
				continue
			}
			out = append(out, n)
		}
		sortBySeq(t, out, func(v domain.Notification) string { return v.ID }, func(a, b domain.Notification) (bool, bool) {
			return t.seq[a.ID] > t.seq[b.ID], true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repository.Paginate(out, limit, offset, 50), nil
}

func (r notificationRepo) MarkRead(ctx context.Context, id string) error {
	return r.s.write(ctx, func(t *tables, _ time.Time) error {
		n, ok := t.notifications[id]
		if !ok {
			return repository.ErrNotFound
		}
		n.IsRead = true
		t.notifications[id] = n
		return nil
	})
}

func (r notificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.s.write(ctx, func(t *tables, _ time.Time) error {
		for id, n := range t.notifications {
			if n.UserID == userID && !n.IsRead {
				n.IsRead = true
				t.notifications[id] = n
				count++
			}
		}
		return nil
	})
	return count, err
}
