package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobmate/board-service/internal/domain"
)

// CreateApplication inserts unless the (job seeker, job) pair already exists.
// The check and the insert happen under one lock.
func (s *Store) CreateApplication(_ context.Context, app domain.Application) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seekers[app.JobSeekerID]; !ok {
		return nil, domain.ErrNotFound
	}
	if _, ok := s.jobs[app.JobID]; !ok {
		return nil, domain.ErrNotFound
	}
	for _, existing := range s.applications {
		if existing.JobSeekerID == app.JobSeekerID && existing.JobID == app.JobID {
			return nil, domain.ErrDuplicateApplication
		}
	}
	app.ID = uuid.NewString()
	app.AppliedDate = s.now()
	app.UpdatedAt = app.AppliedDate
	s.applications[app.ID] = app
	return &app, nil
}

func (s *Store) GetApplication(_ context.Context, id string) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &app, nil
}

func (s *Store) UpdateApplicationStatus(_ context.Context, id string, status domain.Status) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = s.now()
	s.applications[id] = app
	return &app, nil
}

func (s *Store) ApplicationExists(_ context.Context, seekerID, jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.applications {
		if a.JobSeekerID == seekerID && a.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CountApplications(_ context.Context, scope domain.Scope) (map[domain.Status]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[domain.Status]int)
	for _, a := range s.applications {
		if s.inScopeLocked(a, scope) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

func (s *Store) ListApplicationsBySeeker(_ context.Context, seekerID string) ([]domain.ApplicationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ApplicationDetail, 0)
	for _, a := range s.applications {
		if a.JobSeekerID == seekerID {
			out = append(out, s.detailLocked(a))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) ListApplicationsByEmployer(_ context.Context, employerID, jobID string) ([]domain.ApplicationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ApplicationDetail, 0)
	for _, a := range s.applications {
		if jobID != "" && a.JobID != jobID {
			continue
		}
		if s.jobs[a.JobID].EmployerID == employerID {
			out = append(out, s.detailLocked(a))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) inScopeLocked(a domain.Application, scope domain.Scope) bool {
	if scope.JobID != "" && a.JobID != scope.JobID {
		return false
	}
	if scope.EmployerID != "" && s.jobs[a.JobID].EmployerID != scope.EmployerID {
		return false
	}
	return true
}

func (s *Store) detailLocked(a domain.Application) domain.ApplicationDetail {
	job := s.jobs[a.JobID]
	return domain.ApplicationDetail{
		Application:   a,
		JobTitle:      job.Title,
		CompanyName:   s.employers[job.EmployerID].CompanyName,
		JobSeekerName: s.seekers[a.JobSeekerID].FullName,
	}
}

func sortNewestFirst(items []domain.ApplicationDetail) {
	sort.Slice(items, func(i, k int) bool { return items[i].AppliedDate.After(items[k].AppliedDate) })
}

// Sessions is an in-memory identity.Sessions.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]session
}

type session struct {
	userID    string
	expiresAt time.Time
}

func NewSessions() *Sessions {
	return &Sessions{entries: make(map[string]session)}
}

func (s *Sessions) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = session{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *Sessions) Load(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return "", domain.ErrNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, token)
		return "", domain.ErrNotFound
	}
	return e.userID, nil
}

func (s *Sessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}
