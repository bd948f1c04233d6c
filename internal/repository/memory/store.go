// Package memory is an in-process repository.Store used by tests and by the
// server when no Postgres DSN is configured. It mirrors the relational
// schema's cascades and unique constraints.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/repository"
)

type tables struct {
	organizations map[string]domain.Organization
	teams         map[string]domain.Team
	users         map[string]domain.User
	objectives    map[string]domain.Objective
	keyResults    map[string]domain.KeyResult
	checkIns      map[string]domain.CheckIn
	comments      map[string]domain.Comment
	notifications map[string]domain.Notification
	// seq records insertion order for stable sorting.
	seq  map[string]uint64
	next uint64
}

func newTables() *tables {
	return &tables{
		organizations: map[string]domain.Organization{},
		teams:         map[string]domain.Team{},
		users:         map[string]domain.User{},
		objectives:    map[string]domain.Objective{},
		keyResults:    map[string]domain.KeyResult{},
		checkIns:      map[string]domain.CheckIn{},
		comments:      map[string]domain.Comment{},
		notifications: map[string]domain.Notification{},
		seq:           map[string]uint64{},
	}
}

func cloneMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (t *tables) clone() *tables {
	return &tables{
		organizations: cloneMap(t.organizations),
		teams:         cloneMap(t.teams),
		users:         cloneMap(t.users),
		objectives:    cloneMap(t.objectives),
		keyResults:    cloneMap(t.keyResults),
		checkIns:      cloneMap(t.checkIns),
		comments:      cloneMap(t.comments),
		notifications: cloneMap(t.notifications),
		seq:           cloneMap(t.seq),
		next:          t.next,
	}
}

func (t *tables) newID() string {
	id := uuid.NewString()
	t.next++
	t.seq[id] = t.next
	return id
}

type state struct {
	// txMu serializes writers; a transaction holds it for its whole body.
	txMu sync.Mutex
	mu   sync.RWMutex
	data *tables
	now  func() time.Time
}

// Store implements repository.Store in memory.
type Store struct {
	st   *state
	inTx bool
}

// Option configures a Store.
type Option func(*state)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *state) { s.now = now }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	st := &state{data: newTables(), now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(st)
	}
	return &Store{st: st}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Organizations() repository.OrganizationRepository { return organizationRepo{s} }
func (s *Store) Teams() repository.TeamRepository                 { return teamRepo{s} }
func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Objectives() repository.ObjectiveRepository       { return objectiveRepo{s} }
func (s *Store) KeyResults() repository.KeyResultRepository       { return keyResultRepo{s} }
func (s *Store) CheckIns() repository.CheckInRepository           { return checkInRepo{s} }
func (s *Store) Comments() repository.CommentRepository           { return commentRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }
func (s *Store) Ownership() repository.OwnershipResolver          { return ownershipResolver{s} }

// WithinTx runs fn with exclusive write access and restores the previous
// state if fn returns an error or panics. Nested calls join the outer one.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	s.st.mu.RLock()
	snapshot := s.st.data.clone()
	s.st.mu.RUnlock()

	committed := false
	defer func() {
		if !committed {
			s.st.mu.Lock()
			s.st.data = snapshot
			s.st.mu.Unlock()
		}
	}()
	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) read(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return fn(s.st.data)
}

func (s *Store) write(ctx context.Context, fn func(t *tables, now time.Time) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.inTx {
		s.st.txMu.Lock()
		defer s.st.txMu.Unlock()
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return fn(s.st.data, s.st.now())
}

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, constraint)
}

// sortBySeq orders records by insertion after less reports a tie.
func sortBySeq[T any](t *tables, items []T, id func(T) string, less func(a, b T) (bool, bool)) {
	sort.SliceStable(items, func(i, j int) bool {
		if less != nil {
			if lt, decided := less(items[i], items[j]); decided {
				return lt
			}
		}
		return t.seq[id(items[i])] < t.seq[id(items[j])]
	})
}

func strPtr(v string) *string { return &v }

func eqPtr(p *string, v string) bool { return p != nil && *p == v }
