// Package memstore is an in-memory persistence backend. It enforces the same
// uniqueness constraints and cascade rules as the PostgreSQL schema and backs
// DATABASE_URL=memory as well as the package tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobmate/board-service/internal/domain"
)

type Store struct {
	mu           sync.Mutex
	last         time.Time
	users        map[string]domain.User
	seekers      map[string]domain.JobSeeker
	employers    map[string]domain.Employer
	jobs         map[string]domain.Job
	applications map[string]domain.Application
}

func New() *Store {
	return &Store{
		users:        make(map[string]domain.User),
		seekers:      make(map[string]domain.JobSeeker),
		employers:    make(map[string]domain.Employer),
		jobs:         make(map[string]domain.Job),
		applications: make(map[string]domain.Application),
	}
}

// now is strictly increasing so newest-first ordering is deterministic.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// ─── Users ───────────────────────────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, u domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return nil, domain.ErrDuplicateUser
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	return &u, nil
}

// DeleteUser removes the user and cascades to its profile, the employer's
// jobs, and every application hanging off either.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	for sid, js := range s.seekers {
		if js.UserID == id {
			s.deleteSeekerLocked(sid)
		}
	}
	for eid, e := range s.employers {
		if e.UserID == id {
			s.deleteEmployerLocked(eid)
		}
	}
	return nil
}

func (s *Store) deleteSeekerLocked(seekerID string) {
	delete(s.seekers, seekerID)
	for aid, a := range s.applications {
		if a.JobSeekerID == seekerID {
			delete(s.applications, aid)
		}
	}
}

func (s *Store) deleteEmployerLocked(employerID string) {
	delete(s.employers, employerID)
	for jid, j := range s.jobs {
		if j.EmployerID != employerID {
			continue
		}
		delete(s.jobs, jid)
		for aid, a := range s.applications {
			if a.JobID == jid {
				delete(s.applications, aid)
			}
		}
	}
}

func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ─── Profiles ────────────────────────────────────────────────────────────────

func (s *Store) CreateJobSeeker(_ context.Context, js domain.JobSeeker) (*domain.JobSeeker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[js.UserID]; !ok {
		return nil, domain.ErrNotFound
	}
	for _, existing := range s.seekers {
		if existing.UserID == js.UserID {
			return nil, domain.ErrDuplicateUser
		}
	}
	js.ID = uuid.NewString()
	js.CreatedAt = s.now()
	js.Skills = append([]string(nil), js.Skills...)
	s.seekers[js.ID] = js
	return &js, nil
}

func (s *Store) CreateEmployer(_ context.Context, e domain.Employer) (*domain.Employer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[e.UserID]; !ok {
		return nil, domain.ErrNotFound
	}
	for _, existing := range s.employers {
		if existing.UserID == e.UserID {
			return nil, domain.ErrDuplicateUser
		}
	}
	e.ID = uuid.NewString()
	e.CreatedAt = s.now()
	s.employers[e.ID] = e
	return &e, nil
}

func (s *Store) GetJobSeekerByUser(_ context.Context, userID string) (*domain.JobSeeker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, js := range s.seekers {
		if js.UserID == userID {
			return &js, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) GetEmployerByUser(_ context.Context, userID string) (*domain.Employer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.employers {
		if e.UserID == userID {
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) UpdateJobSeeker(_ context.Context, js domain.JobSeeker) (*domain.JobSeeker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.seekers[js.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	js.UserID = current.UserID
	js.CreatedAt = current.CreatedAt
	js.Skills = append([]string(nil), js.Skills...)
	s.seekers[js.ID] = js
	return &js, nil
}

func (s *Store) UpdateEmployer(_ context.Context, e domain.Employer) (*domain.Employer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.employers[e.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.UserID = current.UserID
	e.CreatedAt = current.CreatedAt
	e.IsVerified = current.IsVerified
	s.employers[e.ID] = e
	return &e, nil
}

// ListEmployerIDs returns every employer id.
func (s *Store) ListEmployerIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.employers))
	for id := range s.employers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
