package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"jobmate/board-service/internal/domain"
)

func (s *Store) CreateJob(_ context.Context, job domain.Job) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employers[job.EmployerID]; !ok {
		return nil, domain.ErrNotFound
	}
	job.ID = uuid.NewString()
	job.CreatedAt = s.now()
	s.jobs[job.ID] = job
	return s.withCompanyLocked(job), nil
}

func (s *Store) GetJob(_ context.Context, id string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.withCompanyLocked(job), nil
}

func (s *Store) UpdateJob(_ context.Context, job domain.Job) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.jobs[job.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	job.EmployerID = current.EmployerID
	job.CreatedAt = current.CreatedAt
	s.jobs[job.ID] = job
	return s.withCompanyLocked(job), nil
}

func (s *Store) ToggleJobActive(_ context.Context, id string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	job.IsActive = !job.IsActive
	s.jobs[id] = job
	return s.withCompanyLocked(job), nil
}

// ScanJobs snapshots the matching jobs under the lock and calls fn outside it.
func (s *Store) ScanJobs(ctx context.Context, q domain.JobQuery, fn func(domain.Job) bool) error {
	s.mu.Lock()
	matched := make([]domain.Job, 0)
	for _, j := range s.jobs {
		job := *s.withCompanyLocked(j)
		if matchesQuery(job, q) {
			matched = append(matched, job)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, k int) bool { return matched[i].CreatedAt.After(matched[k].CreatedAt) })
	for _, j := range matched {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(j) {
			return nil
		}
	}
	return nil
}

func (s *Store) SiteStats(_ context.Context) (domain.SiteStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := domain.SiteStats{Companies: len(s.employers), Candidates: len(s.seekers)}
	for _, j := range s.jobs {
		if j.IsActive {
			st.ActiveJobs++
		}
	}
	return st, nil
}

func (s *Store) withCompanyLocked(job domain.Job) *domain.Job {
	job.CompanyName = s.employers[job.EmployerID].CompanyName
	return &job
}

func matchesQuery(j domain.Job, q domain.JobQuery) bool {
	if q.ActiveOnly && !j.IsActive {
		return false
	}
	if q.EmployerID != "" && j.EmployerID != q.EmployerID {
		return false
	}
	if q.JobType != "" && j.JobType != q.JobType {
		return false
	}
	if q.ExperienceLevel != "" && j.ExperienceLevel != q.ExperienceLevel {
		return false
	}
	if q.Location != "" && !containsFold(j.Location, q.Location) {
		return false
	}
	if q.Text != "" {
		return containsFold(j.Title, q.Text) ||
			containsFold(j.Description, q.Text) ||
			containsFold(j.CompanyName, q.Text)
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
